package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/filelink"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/files"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/lifecycle"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store/memstore"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

func png() *files.Upload {
	body := []byte("\x89PNG\r\n")
	return &files.Upload{Name: "photo.png", ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func validInput() AddInput {
	return AddInput{
		Type:       "ID_CARD",
		FirstName:  " Иван ",
		MiddleName: "Петров",
		LastName:   "Иванов",
		Egn:        "9001011234",
		Gender:     "Male",
		Dob:        "1990-01-01",
		ValidUntil: "2030-01-01",
		DocNumber:  "123456789",
		BirthPlace: "София",
		Address:    "ул. Шипка 3",
		IssuedAt:   "МВР София",
	}
}

type DocumentsSuite struct {
	suite.Suite
	ctx    context.Context
	root   string
	store  *memstore.Store
	engine *lifecycle.Engine
	svc    *Service
	logs   *logrustest.Hook
	now    time.Time
}

func TestDocumentsSuite(t *testing.T) {
	suite.Run(t, new(DocumentsSuite))
}

func (s *DocumentsSuite) SetupTest() {
	s.ctx = context.Background()
	s.root = s.T().TempDir()
	s.store = memstore.New()
	s.now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s.logs = logrustest.NewLocal(logger)

	disk, err := files.NewDiskStore(s.root)
	s.Require().NoError(err)

	s.engine = lifecycle.New(s.store, logger, nil, lifecycle.WithClock(func() time.Time { return s.now }))
	s.svc = NewService(s.engine, files.NewService(s.store, disk, logger), logger)
}

func (s *DocumentsSuite) storedBlobs(userID string) int {
	entries, err := os.ReadDir(filepath.Join(s.root, "users", userID))
	if os.IsNotExist(err) {
		return 0
	}
	s.Require().NoError(err)
	return len(entries)
}

func (s *DocumentsSuite) TestSubmitAddValidation() {
	cases := []struct {
		name   string
		mutate func(*AddInput)
		code   string
	}{
		{"missing type", func(in *AddInput) { in.Type = "" }, "DOC_TYPE_REQUIRED"},
		{"bad type", func(in *AddInput) { in.Type = "VISA" }, "DOC_TYPE_INVALID"},
		{"blank middle name", func(in *AddInput) { in.MiddleName = "  " }, "MIDDLE_NAME_REQUIRED"},
		{"short egn", func(in *AddInput) { in.Egn = "123" }, "EGN_INVALID"},
		{"other gender", func(in *AddInput) { in.Gender = "other" }, "GENDER_INVALID"},
		{"bad dob", func(in *AddInput) { in.Dob = "01.01.1990" }, "DOB_INVALID"},
		{"minor", func(in *AddInput) { in.Dob = "2008-05-05" }, "DOB_UNDER_18"},
		{"expired", func(in *AddInput) { in.ValidUntil = "2026-05-03" }, "VALID_UNTIL_PAST"},
		{"doc number", func(in *AddInput) { in.DocNumber = "12345678A" }, "DOC_NUMBER_INVALID"},
		{"issued at", func(in *AddInput) { in.IssuedAt = "" }, "ISSUED_AT_REQUIRED"},
		{"license without categories", func(in *AddInput) {
			in.Type = "DRIVER_LICENSE"
			in.Categories = []string{" ", ""}
		}, "CATEGORIES_REQUIRED"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := validInput()
			tc.mutate(&in)
			_, err := s.svc.SubmitAdd(s.ctx, "user-1", "9001011234", in, png(), png())
			s.Equal(apperr.KindValidation, apperr.KindOf(err))
			s.Equal(tc.code, apperr.CodeOf(err))
		})
	}
	s.Zero(s.storedBlobs("user-1"))
}

func (s *DocumentsSuite) TestEighteenthBirthdayToday() {
	in := validInput()
	in.Dob = "2008-05-04"
	_, err := s.svc.SubmitAdd(s.ctx, "user-1", "", in, png(), png())
	s.Require().NoError(err)
}

func (s *DocumentsSuite) TestSubmitAddRequiresPNGOrJPEG() {
	gif := &files.Upload{Name: "a.gif", ContentType: "image/gif", Size: 3, Body: bytes.NewReader([]byte("GIF"))}
	_, err := s.svc.SubmitAdd(s.ctx, "user-1", "", validInput(), png(), gif)
	s.Equal("ONLY_PNG_OR_JPG_ALLOWED", apperr.CodeOf(err))

	_, err = s.svc.SubmitAdd(s.ctx, "user-1", "", validInput(), nil, png())
	s.Equal("IMAGE_REQUIRED", apperr.CodeOf(err))
}

func (s *DocumentsSuite) TestAddLifecycle() {
	in := validInput()
	req, err := s.svc.SubmitAdd(s.ctx, "user-1", "9001011234", in, png(), png())
	s.Require().NoError(err)
	s.Equal(types.DocumentTypeIDCard, *req.DocumentType)
	s.Equal("", req.AdminNote)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(req.Payload, &payload))
	s.Equal("Иван Петров Иванов", payload["userFullName"])
	s.Equal("male", payload["gender"])
	s.Equal(map[string]any{"name": "Снимка 1"}, payload["photo1"])
	s.Equal([]any{}, payload["categories"])

	_, err = s.svc.SubmitAdd(s.ctx, "user-1", "9001011234", in, png(), png())
	s.Equal("PENDING_ADD_ALREADY_EXISTS", apperr.CodeOf(err))
	s.Equal(2, s.storedBlobs("user-1"), "files of the refused submission are discarded")

	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)
	s.Equal(types.RequestStatusApproved, decided.Status)
	s.Require().NotNil(decided.TargetID)

	doc, err := s.svc.MyDocument(s.ctx, "user-1", *decided.TargetID)
	s.Require().NoError(err)
	s.Equal("Иван", doc.FirstName)
	s.Equal("2030-01-01", calc.FormatDate(doc.ValidUntil))

	for _, tag := range photoTags {
		reqFile, err := filelink.FileID(s.ctx, s.store.FileLinks(), filelink.Key{EntityType: types.EntityDocumentRequest, EntityID: req.ID, Tag: tag})
		s.Require().NoError(err)
		docFile, err := filelink.FileID(s.ctx, s.store.FileLinks(), filelink.Key{EntityType: types.EntityDocument, EntityID: doc.ID, Tag: tag})
		s.Require().NoError(err)
		s.Equal(reqFile, docFile)
	}

	_, rc, err := s.svc.DocumentFile(s.ctx, "user-1", doc.ID, types.TagPhoto2)
	s.Require().NoError(err)
	s.Require().NoError(rc.Close())

	_, _, err = s.svc.DocumentFile(s.ctx, "user-2", doc.ID, types.TagPhoto2)
	s.Equal("DOCUMENT_NOT_FOUND", apperr.CodeOf(err))

	_, err = s.svc.SubmitAdd(s.ctx, "user-1", "9001011234", in, png(), png())
	s.Equal("DOCUMENT_OF_TYPE_ALREADY_EXISTS", apperr.CodeOf(err))
}

func (s *DocumentsSuite) TestRejectCreatesNothing() {
	req, err := s.svc.SubmitAdd(s.ctx, "user-1", "", validInput(), png(), png())
	s.Require().NoError(err)

	decided, err := s.svc.Reject(s.ctx, req.ID, "admin-1", "blurry photo")
	s.Require().NoError(err)
	s.Equal(types.RequestStatusRejected, decided.Status)
	s.Equal("blurry photo", decided.AdminNote)

	docs, err := s.svc.MyDocuments(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(docs)

	list, err := s.svc.AdminList(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)

	_, err = s.svc.Approve(s.ctx, req.ID, "admin-2", "")
	s.Equal("REQUEST_ALREADY_DECIDED", apperr.CodeOf(err))
}

func (s *DocumentsSuite) TestRacingApprovalsCreateOneDocument() {
	req, err := s.svc.SubmitAdd(s.ctx, "user-1", "", validInput(), png(), png())
	s.Require().NoError(err)

	var wins, conflicts atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := s.svc.Approve(s.ctx, req.ID, "admin", "")
			if err == nil {
				wins.Add(1)
			} else if apperr.KindOf(err) == apperr.KindConflict {
				conflicts.Add(1)
			} else {
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(1), wins.Load())
	s.Equal(int32(7), conflicts.Load())

	docs, err := s.svc.MyDocuments(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *DocumentsSuite) approvedDocument() *types.Document {
	req, err := s.svc.SubmitAdd(s.ctx, "user-1", "", validInput(), png(), png())
	s.Require().NoError(err)
	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)
	doc, err := s.svc.MyDocument(s.ctx, "user-1", *decided.TargetID)
	s.Require().NoError(err)
	return doc
}

func (s *DocumentsSuite) TestRemoveLifecycle() {
	doc := s.approvedDocument()

	_, err := s.svc.SubmitRemove(s.ctx, "user-2", doc.ID, "")
	s.Equal("DOCUMENT_NOT_FOUND", apperr.CodeOf(err))
	_, err = s.svc.SubmitRemove(s.ctx, "user-1", " ", "")
	s.Equal("DOCUMENT_ID_REQUIRED", apperr.CodeOf(err))

	req, err := s.svc.SubmitRemove(s.ctx, "user-1", doc.ID, " lost ")
	s.Require().NoError(err)
	s.Equal(doc.ID, utils.PtrString(req.TargetID))
	s.JSONEq(`{"documentId":"`+doc.ID+`","reason":"lost","type":"ID_CARD","docNumber":"123456789","validUntil":"2030-01-01"}`, string(req.Payload))

	_, err = s.svc.SubmitRemove(s.ctx, "user-1", doc.ID, "")
	s.Equal("PENDING_REMOVE_ALREADY_EXISTS", apperr.CodeOf(err))

	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "done")
	s.Require().NoError(err)
	s.Equal(types.RequestStatusApproved, decided.Status)
	s.Nil(decided.TargetID)

	_, err = s.svc.MyDocument(s.ctx, "user-1", doc.ID)
	s.Equal("DOCUMENT_NOT_FOUND", apperr.CodeOf(err))

	links, err := s.store.FileLinks().Links(s.ctx, types.EntityDocument, doc.ID)
	s.Require().NoError(err)
	s.Empty(links)

	entry := s.logEntry("document removed")
	s.Require().NotNil(entry)
	s.Equal(doc.ID, entry.Data["document_id"])
	s.Equal(req.ID, entry.Data["request_id"])
}

func (s *DocumentsSuite) logEntry(msg string) *logrus.Entry {
	for _, e := range s.logs.AllEntries() {
		if e.Message == msg {
			return e
		}
	}
	return nil
}

func (s *DocumentsSuite) pendingRemove(target *string, p removePayload) *types.Request {
	req := &types.Request{
		ID:        utils.NanoID(),
		Domain:    domain,
		UserID:    "user-1",
		Kind:      types.KindRemoveDocument,
		Status:    types.RequestStatusPending,
		Payload:   utils.MustMarshalJSON(p),
		TargetID:  target,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.store.Requests().Create(s.ctx, req))
	return req
}

func (s *DocumentsSuite) TestRemoveSnapshotMismatchDeletesNothing() {
	doc := s.approvedDocument()
	req := s.pendingRemove(&doc.ID, removePayload{DocumentID: doc.ID, Type: doc.Type, DocNumber: "999999999"})

	_, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Equal(apperr.KindConflict, apperr.KindOf(err))
	s.Equal("DOCUMENT_SNAPSHOT_MISMATCH", apperr.CodeOf(err))

	_, err = s.svc.MyDocument(s.ctx, "user-1", doc.ID)
	s.Require().NoError(err)

	cur, err := s.svc.AdminGet(s.ctx, req.ID)
	s.Require().NoError(err)
	s.True(cur.Pending())
}

func (s *DocumentsSuite) TestRemoveResolvesByTypeWhenIdsMissing() {
	doc := s.approvedDocument()
	req := s.pendingRemove(nil, removePayload{Type: doc.Type, DocNumber: doc.DocNumber})

	_, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)

	_, err = s.svc.MyDocument(s.ctx, "user-1", doc.ID)
	s.Equal("DOCUMENT_NOT_FOUND", apperr.CodeOf(err))
}

func (s *DocumentsSuite) TestRemoveWithoutAnyReference() {
	req := s.pendingRemove(nil, removePayload{})

	_, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Equal("DOCUMENT_ID_REQUIRED", apperr.CodeOf(err))
}

func (s *DocumentsSuite) TestRemoveOfForeignDocument() {
	other := &types.Document{ID: "doc-x", UserID: "user-2", Type: types.DocumentTypePassport, DocNumber: "111111111", CreatedAt: s.now, UpdatedAt: s.now}
	s.Require().NoError(s.store.Documents().Create(s.ctx, other))
	req := s.pendingRemove(&other.ID, removePayload{DocumentID: other.ID})

	_, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Equal("DOCUMENT_OWNER_MISMATCH", apperr.CodeOf(err))
}

func (s *DocumentsSuite) TestRequestFileScopes() {
	req, err := s.svc.SubmitAdd(s.ctx, "user-1", "", validInput(), png(), png())
	s.Require().NoError(err)

	_, rc, err := s.svc.RequestFile(s.ctx, "user-1", req.ID, types.TagPhoto1)
	s.Require().NoError(err)
	s.Require().NoError(rc.Close())

	_, rc, err = s.svc.RequestFile(s.ctx, "", req.ID, types.TagPhoto2)
	s.Require().NoError(err)
	s.Require().NoError(rc.Close())

	_, _, err = s.svc.RequestFile(s.ctx, "user-2", req.ID, types.TagPhoto1)
	s.Equal("REQUEST_NOT_FOUND", apperr.CodeOf(err))
}
