package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type MemstoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	now   time.Time
}

func TestMemstoreSuite(t *testing.T) {
	suite.Run(t, new(MemstoreSuite))
}

func (s *MemstoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *MemstoreSuite) pending(id, userID string, kind types.RequestKind) *types.Request {
	return &types.Request{
		ID:        id,
		Domain:    types.DomainDocument,
		UserID:    userID,
		Kind:      kind,
		Status:    types.RequestStatusPending,
		Payload:   []byte(`{"a":1}`),
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
}

func (s *MemstoreSuite) TestRunInTxRollsBackOnError() {
	s.Require().NoError(s.store.Requests().Create(s.ctx, s.pending("r1", "u1", types.KindAddDocument)))

	boom := errors.New("boom")
	err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
		s.Require().NoError(tx.Requests().Create(s.ctx, s.pending("r2", "u1", types.KindRemoveDocument)))
		changed, err := tx.Requests().Decide(s.ctx, store.Decision{RequestID: "r1", Status: types.RequestStatusApproved, AdminID: "a1", At: s.now})
		s.Require().NoError(err)
		s.Require().True(changed)
		return boom
	})
	s.Require().ErrorIs(err, boom)

	_, err = s.store.Requests().Request(s.ctx, "r2")
	s.Require().ErrorIs(err, types.ErrRequestNotFound)

	r1, err := s.store.Requests().Request(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(types.RequestStatusPending, r1.Status)
	s.Nil(r1.DecidedAt)
}

func (s *MemstoreSuite) TestDecideIsConditional() {
	s.Require().NoError(s.store.Requests().Create(s.ctx, s.pending("r1", "u1", types.KindAddDocument)))

	changed, err := s.store.Requests().Decide(s.ctx, store.Decision{RequestID: "r1", Status: types.RequestStatusRejected, AdminID: "a1", Note: "no", At: s.now})
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.store.Requests().Decide(s.ctx, store.Decision{RequestID: "r1", Status: types.RequestStatusApproved, AdminID: "a2", At: s.now})
	s.Require().NoError(err)
	s.False(changed)

	r1, err := s.store.Requests().Request(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(types.RequestStatusRejected, r1.Status)
	s.Equal("no", r1.AdminNote)
	s.Equal("a1", *r1.DecidedByAdminID)
}

func (s *MemstoreSuite) TestExistsPendingFilters() {
	reg := "CA1234AB"
	req := s.pending("r1", "u1", types.KindAddVehicle)
	req.Domain = types.DomainTransport
	req.RegNumber = &reg
	s.Require().NoError(s.store.Requests().Create(s.ctx, req))

	s.Run("case insensitive reg number across users", func() {
		found, err := s.store.Requests().ExistsPending(s.ctx, store.PendingQuery{Domain: types.DomainTransport, Kind: types.KindAddVehicle, RegNumber: "ca1234ab"})
		s.Require().NoError(err)
		s.True(found)
	})

	s.Run("other user", func() {
		found, err := s.store.Requests().ExistsPending(s.ctx, store.PendingQuery{Domain: types.DomainTransport, Kind: types.KindAddVehicle, UserID: "u2"})
		s.Require().NoError(err)
		s.False(found)
	})

	s.Run("other domain", func() {
		found, err := s.store.Requests().ExistsPending(s.ctx, store.PendingQuery{Domain: types.DomainDocument, Kind: types.KindAddVehicle})
		s.Require().NoError(err)
		s.False(found)
	})
}

func (s *MemstoreSuite) TestReadsAreCopies() {
	s.Require().NoError(s.store.Requests().Create(s.ctx, s.pending("r1", "u1", types.KindAddDocument)))

	r1, err := s.store.Requests().Request(s.ctx, "r1")
	s.Require().NoError(err)
	r1.Payload[0] = 'X'
	r1.Status = types.RequestStatusApproved

	again, err := s.store.Requests().Request(s.ctx, "r1")
	s.Require().NoError(err)
	s.JSONEq(`{"a":1}`, string(again.Payload))
	s.Equal(types.RequestStatusPending, again.Status)
}

func (s *MemstoreSuite) TestFileLinkKeyIsUnique() {
	link := &types.FileLink{ID: "l1", FileID: "f1", EntityType: types.EntityDocument, EntityID: "d1", Tag: types.TagPhoto1, CreatedAt: s.now}
	s.Require().NoError(s.store.FileLinks().Create(s.ctx, link))

	dup := *link
	dup.ID = "l2"
	s.Require().ErrorIs(s.store.FileLinks().Create(s.ctx, &dup), types.ErrDuplicateKey)

	s.Require().NoError(s.store.FileLinks().Delete(s.ctx, types.EntityDocument, "d1", types.TagPhoto1))
	s.Require().NoError(s.store.FileLinks().Create(s.ctx, &dup))

	got, err := s.store.FileLinks().Link(s.ctx, types.EntityDocument, "d1", types.TagPhoto1)
	s.Require().NoError(err)
	s.Equal("l2", got.ID)
}

func (s *MemstoreSuite) TestAppointmentSlots() {
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	a := &types.HealthAppointment{ID: "a1", UserID: "u1", DoctorPracticeNumber: "1234567890", DoctorName: "Д-р Иванов", ApptDate: day, ApptTime: "09:30"}
	s.Require().NoError(s.store.Appointments().Create(s.ctx, a))

	otherUser := *a
	otherUser.ID, otherUser.UserID = "a2", "u2"
	s.Require().ErrorIs(s.store.Appointments().Create(s.ctx, &otherUser), types.ErrAppointmentSlotTaken)

	otherDoctor := *a
	otherDoctor.ID, otherDoctor.DoctorPracticeNumber = "a3", "0987654321"
	s.Require().ErrorIs(s.store.Appointments().Create(s.ctx, &otherDoctor), types.ErrAppointmentSlotTaken)

	later := otherUser
	later.ID, later.ApptTime = "a4", "10:00"
	s.Require().NoError(s.store.Appointments().Create(s.ctx, &later))

	slots, err := s.store.Appointments().BusySlots(s.ctx, "1234567890", day)
	s.Require().NoError(err)
	s.Equal([]string{"09:30", "10:00"}, slots)
}
