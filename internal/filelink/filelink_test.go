package filelink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store/memstore"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var errRollback = errors.New("rollback")

type FileLinkSuite struct {
	suite.Suite
	ctx   context.Context
	store *memstore.Store
	now   time.Time
}

func TestFileLinkSuite(t *testing.T) {
	suite.Run(t, new(FileLinkSuite))
}

func (s *FileLinkSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *FileLinkSuite) TestAttachRejectsOccupiedSlot() {
	key := Key{EntityType: types.EntityDocumentRequest, EntityID: "req-1", Tag: types.TagPhoto1}

	_, err := Attach(s.ctx, s.store.FileLinks(), key, "file-1", s.now)
	s.Require().NoError(err)

	_, err = Attach(s.ctx, s.store.FileLinks(), key, "file-2", s.now)
	s.Require().ErrorIs(err, types.ErrDuplicateKey)
}

func (s *FileLinkSuite) TestRetagLeavesOneLinkPerSlot() {
	key := Key{EntityType: types.EntityDocument, EntityID: "doc-1", Tag: types.TagPhoto1}

	_, err := Attach(s.ctx, s.store.FileLinks(), key, "stale", s.now)
	s.Require().NoError(err)

	_, err = Retag(s.ctx, s.store.FileLinks(), key, "fresh", s.now)
	s.Require().NoError(err)
	_, err = Retag(s.ctx, s.store.FileLinks(), key, "fresh", s.now)
	s.Require().NoError(err)

	links, err := s.store.FileLinks().Links(s.ctx, key.EntityType, key.EntityID)
	s.Require().NoError(err)
	s.Require().Len(links, 1)
	s.Equal("fresh", links[0].FileID)
}

func (s *FileLinkSuite) TestCopyKeepsSourceAsAuditTrail() {
	from := Key{EntityType: types.EntityPropertyRequest, EntityID: "req-1", Tag: types.TagOwnershipDoc}
	to := Key{EntityType: types.EntityProperty, EntityID: "prop-1", Tag: types.TagOwnershipDoc}

	_, err := Attach(s.ctx, s.store.FileLinks(), from, "file-1", s.now)
	s.Require().NoError(err)

	copied, err := Copy(s.ctx, s.store.FileLinks(), from, to, s.now)
	s.Require().NoError(err)
	s.True(copied)

	id, err := FileID(s.ctx, s.store.FileLinks(), to)
	s.Require().NoError(err)
	s.Equal("file-1", id)

	id, err = FileID(s.ctx, s.store.FileLinks(), from)
	s.Require().NoError(err)
	s.Equal("file-1", id)
}

func (s *FileLinkSuite) TestCopyWithoutSource() {
	from := Key{EntityType: types.EntityVehicleRequest, EntityID: "missing", Tag: types.TagRegistrationDoc}
	to := Key{EntityType: types.EntityVehicle, EntityID: "veh-1", Tag: types.TagRegistrationDoc}

	copied, err := Copy(s.ctx, s.store.FileLinks(), from, to, s.now)
	s.Require().NoError(err)
	s.False(copied)

	_, err = FileID(s.ctx, s.store.FileLinks(), to)
	s.ErrorIs(err, types.ErrFileLinkNotFound)
}

func (s *FileLinkSuite) TestRemoveIsIdempotent() {
	key := Key{EntityType: types.EntityDocument, EntityID: "doc-1", Tag: types.TagPhoto2}

	_, err := Attach(s.ctx, s.store.FileLinks(), key, "file-1", s.now)
	s.Require().NoError(err)

	s.Require().NoError(Remove(s.ctx, s.store.FileLinks(), key))
	s.Require().NoError(Remove(s.ctx, s.store.FileLinks(), key))

	_, err = FileID(s.ctx, s.store.FileLinks(), key)
	s.ErrorIs(err, types.ErrFileLinkNotFound)
}

func TestRetagRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	now := time.Now().UTC()
	key := Key{EntityType: types.EntityProperty, EntityID: "prop-1", Tag: types.TagSketchPDF}

	_, err := Attach(ctx, st.FileLinks(), key, "original", now)
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(tx store.Tx) error {
		if _, err := Retag(ctx, tx.FileLinks(), key, "replacement", now); err != nil {
			return err
		}
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)

	id, err := FileID(ctx, st.FileLinks(), key)
	require.NoError(t, err)
	require.Equal(t, "original", id)
}
