package property

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/filelink"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/files"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/lifecycle"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store/memstore"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

func pdf() *files.Upload {
	body := []byte("%PDF-1.7\n")
	return &files.Upload{Name: "doc.pdf", ContentType: "application/pdf", Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func validInput() AddInput {
	return AddInput{
		Type:         "Апартамент",
		Oblast:       "София",
		Place:        "София",
		Address:      "ул. Граф Игнатиев 10",
		AreaSqm:      80,
		PurchaseYear: 2015,
	}
}

type PropertySuite struct {
	suite.Suite
	ctx   context.Context
	root  string
	store *memstore.Store
	svc   *Service
	logs  *logrustest.Hook
	now   time.Time
}

func TestPropertySuite(t *testing.T) {
	suite.Run(t, new(PropertySuite))
}

func (s *PropertySuite) SetupTest() {
	s.ctx = context.Background()
	s.root = s.T().TempDir()
	s.store = memstore.New()
	s.now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s.logs = logrustest.NewLocal(logger)

	disk, err := files.NewDiskStore(s.root)
	s.Require().NoError(err)

	engine := lifecycle.New(s.store, logger, nil, lifecycle.WithClock(func() time.Time { return s.now }))
	s.svc = NewService(engine, files.NewService(s.store, disk, logger), logger)
}

func (s *PropertySuite) storedBlobs(userID string) int {
	entries, err := os.ReadDir(filepath.Join(s.root, "users", userID))
	if os.IsNotExist(err) {
		return 0
	}
	s.Require().NoError(err)
	return len(entries)
}

func (s *PropertySuite) approvedProperty() *types.Property {
	req, err := s.svc.SubmitAdd(s.ctx, "user-1", validInput(), pdf())
	s.Require().NoError(err)
	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)
	prop, err := s.svc.MyProperty(s.ctx, "user-1", utils.PtrString(decided.TargetID))
	s.Require().NoError(err)
	return prop
}

func (s *PropertySuite) TestSubmitAddValidation() {
	cases := []struct {
		name   string
		mutate func(*AddInput)
		code   string
	}{
		{"missing type", func(in *AddInput) { in.Type = " " }, "TYPE_REQUIRED"},
		{"missing oblast", func(in *AddInput) { in.Oblast = "" }, "OBLAST_REQUIRED"},
		{"missing place", func(in *AddInput) { in.Place = "" }, "PLACE_REQUIRED"},
		{"missing address", func(in *AddInput) { in.Address = "" }, "ADDRESS_REQUIRED"},
		{"zero area", func(in *AddInput) { in.AreaSqm = 0 }, "AREA_REQUIRED"},
		{"old purchase", func(in *AddInput) { in.PurchaseYear = 1899 }, "PURCHASE_YEAR_INVALID"},
		{"future purchase", func(in *AddInput) { in.PurchaseYear = 2101 }, "PURCHASE_YEAR_INVALID"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := validInput()
			tc.mutate(&in)
			_, err := s.svc.SubmitAdd(s.ctx, "user-1", in, pdf())
			s.Equal(apperr.KindValidation, apperr.KindOf(err))
			s.Equal(tc.code, apperr.CodeOf(err))
		})
	}
	s.Zero(s.storedBlobs("user-1"))
}

func (s *PropertySuite) TestSubmitAddRequiresPDF() {
	_, err := s.svc.SubmitAdd(s.ctx, "user-1", validInput(), nil)
	s.Equal("OWNERSHIP_DOC_REQUIRED", apperr.CodeOf(err))

	img := &files.Upload{Name: "a.png", ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("PNG"))}
	_, err = s.svc.SubmitAdd(s.ctx, "user-1", validInput(), img)
	s.Equal("ONLY_PDF_ALLOWED", apperr.CodeOf(err))
}

func (s *PropertySuite) TestAddLifecycle() {
	req, err := s.svc.SubmitAdd(s.ctx, "user-1", validInput(), pdf())
	s.Require().NoError(err)
	s.Equal(types.RequestStatusPending, req.Status)

	_, err = s.svc.SubmitAdd(s.ctx, "user-1", validInput(), pdf())
	s.Equal("PENDING_ADD_ALREADY_EXISTS", apperr.CodeOf(err))
	s.Equal(1, s.storedBlobs("user-1"))

	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)
	s.Require().NotNil(decided.TargetID)

	props, err := s.svc.MyActiveProperties(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(props, 1)
	s.Equal(*decided.TargetID, props[0].ID)
	s.True(props[0].Active)
	s.Equal(80, props[0].AreaSqm)

	_, rc, err := s.svc.PropertyFile(s.ctx, "user-1", props[0].ID, types.TagOwnershipDoc)
	s.Require().NoError(err)
	s.Require().NoError(rc.Close())

	_, _, err = s.svc.PropertyFile(s.ctx, "user-2", props[0].ID, types.TagOwnershipDoc)
	s.Equal("PROPERTY_NOT_FOUND", apperr.CodeOf(err))

	_, rc, err = s.svc.RequestFile(s.ctx, "", req.ID, types.TagOwnershipDoc)
	s.Require().NoError(err)
	s.Require().NoError(rc.Close())
}

func (s *PropertySuite) TestRemoveLifecycle() {
	prop := s.approvedProperty()

	_, err := s.svc.SubmitRemove(s.ctx, "user-2", prop.ID, "")
	s.Equal("PROPERTY_NOT_FOUND", apperr.CodeOf(err))

	req, err := s.svc.SubmitRemove(s.ctx, "user-1", prop.ID, "sold")
	s.Require().NoError(err)
	s.Equal(prop.ID, utils.PtrString(req.TargetID))

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(req.Payload, &payload))
	s.Equal("sold", payload["reason"])
	s.Equal("Апартамент", payload["type"])
	s.Equal(map[string]any{"name": "Документ (PDF)"}, payload["ownershipDoc"])

	_, err = s.svc.SubmitRemove(s.ctx, "user-1", prop.ID, "")
	s.Equal("PENDING_REMOVE_ALREADY_EXISTS", apperr.CodeOf(err))

	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)
	s.Equal(prop.ID, utils.PtrString(decided.TargetID))

	cur, err := s.svc.MyProperty(s.ctx, "user-1", prop.ID)
	s.Require().NoError(err)
	s.False(cur.Active)
	s.Require().NotNil(cur.DeactivatedAt)
	s.Equal(s.now, *cur.DeactivatedAt)

	props, err := s.svc.MyActiveProperties(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(props)

	_, err = s.svc.SubmitRemove(s.ctx, "user-1", prop.ID, "")
	s.Equal("PROPERTY_ALREADY_INACTIVE", apperr.CodeOf(err))

	_, err = s.svc.SubmitTaxAssessment(s.ctx, "user-1", TaxInput{PropertyID: prop.ID, Neighborhood: "Център", Purpose: "Жилищно"})
	s.Equal("PROPERTY_INACTIVE", apperr.CodeOf(err))
}

func (s *PropertySuite) TestTaxAssessment() {
	prop := s.approvedProperty()

	_, err := s.svc.MyTaxAssessment(s.ctx, "user-1", prop.ID)
	s.Equal("TAX_ASSESSMENT_NOT_FOUND", apperr.CodeOf(err))

	_, err = s.svc.SubmitTaxAssessment(s.ctx, "user-1", TaxInput{PropertyID: prop.ID, Purpose: "Жилищно"})
	s.Equal("NEIGHBORHOOD_REQUIRED", apperr.CodeOf(err))

	in := TaxInput{PropertyID: prop.ID, Neighborhood: "Център", Purpose: "Жилищно", HasAdjParts: "да"}
	req, err := s.svc.SubmitTaxAssessment(s.ctx, "user-1", in)
	s.Require().NoError(err)

	_, err = s.svc.SubmitTaxAssessment(s.ctx, "user-1", in)
	s.Equal("PENDING_TAX_ALREADY_EXISTS", apperr.CodeOf(err))

	_, err = s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)

	a, err := s.svc.MyTaxAssessment(s.ctx, "user-1", prop.ID)
	s.Require().NoError(err)
	s.Equal(184320.0, a.Price)
	s.Equal(276.0, a.YearlyTax)
	s.Equal(162.0, a.TrashFee)
	s.True(a.HasAdjoiningParts)
	s.Equal("Център", a.Neighborhood)
	s.Equal(req.ID, a.RequestID)
	s.Equal("admin-1", utils.PtrString(a.ApprovedByAdminID))

	in.Purpose = "Търговско"
	in.HasAdjParts = "Не"
	second, err := s.svc.SubmitTaxAssessment(s.ctx, "user-1", in)
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, second.ID, "", "")
	s.Require().NoError(err)

	b, err := s.svc.MyTaxAssessment(s.ctx, "user-1", prop.ID)
	s.Require().NoError(err)
	s.Equal(a.ID, b.ID, "a second approval updates the same assessment")
	s.Equal(369.0, b.YearlyTax)
	s.Equal(147.0, b.TrashFee)
	s.Nil(b.ApprovedByAdminID)
}

func (s *PropertySuite) TestSketchLifecycle() {
	prop := s.approvedProperty()

	_, err := s.svc.SubmitSketch(s.ctx, "user-1", SketchInput{PropertyID: prop.ID, TermDays: utils.IntPtr(5)})
	s.Equal("TERM_DAYS_MUST_BE_3_OR_7", apperr.CodeOf(err))

	req, err := s.svc.SubmitSketch(s.ctx, "user-1", SketchInput{PropertyID: prop.ID, DocType: "schema", TermDays: utils.IntPtr(3)})
	s.Require().NoError(err)

	_, err = s.svc.SubmitSketch(s.ctx, "user-1", SketchInput{PropertyID: prop.ID})
	s.Equal("PENDING_SKETCH_ALREADY_EXISTS", apperr.CodeOf(err))

	_, err = s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Equal("USE_APPROVE_SKETCH_ENDPOINT_WITH_PDF", apperr.CodeOf(err))
	cur, err := s.svc.AdminGet(s.ctx, req.ID)
	s.Require().NoError(err)
	s.True(cur.Pending())

	_, err = s.svc.ApproveSketch(s.ctx, req.ID, "admin-1", "", nil)
	s.Equal("PDF_REQUIRED", apperr.CodeOf(err))

	decided, err := s.svc.ApproveSketch(s.ctx, req.ID, "admin-1", "ready", pdf())
	s.Require().NoError(err)
	s.Equal(types.RequestStatusApproved, decided.Status)

	sk, err := s.svc.MySketch(s.ctx, "user-1", prop.ID)
	s.Require().NoError(err)
	s.Equal(types.SketchDocTypeSchema, sk.DocType)
	s.Equal(3, sk.TermDays)

	link, err := filelink.FileID(s.ctx, s.store.FileLinks(), filelink.Key{EntityType: types.EntityProperty, EntityID: prop.ID, Tag: types.TagSketchPDF})
	s.Require().NoError(err)
	s.NotEmpty(link)

	entry := s.logs.LastEntry()
	s.Require().NotNil(entry)
	s.Equal("property sketch issued", entry.Message)
	s.Equal(link, entry.Data["file_id"])
	s.Equal(prop.ID, entry.Data["property_id"])

	_, err = s.svc.ApproveSketch(s.ctx, req.ID, "admin-1", "", pdf())
	s.Equal("REQUEST_ALREADY_DECIDED", apperr.CodeOf(err))
}

func (s *PropertySuite) TestApproveSketchRejectsOtherKinds() {
	prop := s.approvedProperty()
	req, err := s.svc.SubmitRemove(s.ctx, "user-1", prop.ID, "")
	s.Require().NoError(err)

	_, err = s.svc.ApproveSketch(s.ctx, req.ID, "admin-1", "", pdf())
	s.Equal("REQUEST_KIND_NOT_SKETCH", apperr.CodeOf(err))
}

func (s *PropertySuite) TestDebts() {
	prop := s.approvedProperty()

	_, err := s.svc.Debts(s.ctx, "user-1", prop.ID)
	s.Equal("TAX_ASSESSMENT_REQUIRED_FOR_DEBTS", apperr.CodeOf(err))

	req, err := s.svc.SubmitTaxAssessment(s.ctx, "user-1", TaxInput{PropertyID: prop.ID, Neighborhood: "Център", Purpose: "Жилищно"})
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)

	s.now = time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC)
	debts, err := s.svc.Debts(s.ctx, "user-1", prop.ID)
	s.Require().NoError(err)
	s.Require().Len(debts, 3)
	s.Equal(2028, debts[0].Year)
	s.Equal(2026, debts[2].Year)
	s.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), debts[2].DueDate)
	s.Equal(276.0, debts[0].YearlyTaxAmount)

	again, err := s.svc.Debts(s.ctx, "user-1", prop.ID)
	s.Require().NoError(err)
	s.Len(again, 3)

	paid, err := s.svc.PayDebt(s.ctx, "user-1", prop.ID, 2027, "yearly_tax")
	s.Require().NoError(err)
	s.True(paid.YearlyTaxPaid)
	s.False(paid.TrashFeePaid)
	first := *paid.YearlyTaxPaidAt

	s.now = s.now.Add(time.Hour)
	paid, err = s.svc.PayDebt(s.ctx, "user-1", prop.ID, 2027, "YEARLY_TAX")
	s.Require().NoError(err)
	s.Equal(first, *paid.YearlyTaxPaidAt)

	_, err = s.svc.PayDebt(s.ctx, "user-1", prop.ID, 2027, "PENALTY")
	s.Equal("UNKNOWN_PAYMENT_KIND", apperr.CodeOf(err))
	_, err = s.svc.PayDebt(s.ctx, "user-1", prop.ID, 2030, "TRASH_FEE")
	s.Equal("DEBT_NOT_FOUND", apperr.CodeOf(err))
	_, err = s.svc.PayDebt(s.ctx, "user-2", prop.ID, 2027, "TRASH_FEE")
	s.Equal("PROPERTY_NOT_FOUND", apperr.CodeOf(err))
}

func (s *PropertySuite) TestAdminList() {
	prop := s.approvedProperty()
	req, err := s.svc.SubmitRemove(s.ctx, "user-1", prop.ID, "")
	s.Require().NoError(err)
	_, err = s.svc.Reject(s.ctx, req.ID, "admin-1", "no")
	s.Require().NoError(err)

	all, err := s.svc.AdminList(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 1)

	rejected, err := s.svc.AdminList(s.ctx, "rejected")
	s.Require().NoError(err)
	s.Require().Len(rejected, 1)
	s.Equal(req.ID, rejected[0].ID)

	_, err = s.svc.AdminList(s.ctx, "LOST")
	s.Equal("STATUS_INVALID", apperr.CodeOf(err))

	mine, err := s.svc.MyRequests(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Len(mine, 2)
}
