package transport

import (
	"bytes"
	"context"
	"io"
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
	"github.com/stretchr/testify/suite"
)

func pdf() *files.Upload {
	body := []byte("%PDF-1.7\n")
	return &files.Upload{Name: "doc.pdf", ContentType: "application/pdf", Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func validVehicle() AddVehicleInput {
	return AddVehicleInput{
		RegNumber:       " ca 1234 kx ",
		Brand:           "Skoda",
		Model:           "Octavia",
		ManufactureYear: 2019,
		PowerKw:         85,
		EuroCategory:    "EURO_6",
	}
}

type TransportSuite struct {
	suite.Suite
	ctx   context.Context
	store *memstore.Store
	svc   *Service
	now   time.Time
}

func TestTransportSuite(t *testing.T) {
	suite.Run(t, new(TransportSuite))
}

func (s *TransportSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	s.now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	disk, err := files.NewDiskStore(s.T().TempDir())
	s.Require().NoError(err)

	engine := lifecycle.New(s.store, logger, nil, lifecycle.WithClock(func() time.Time { return s.now }))
	s.svc = NewService(engine, files.NewService(s.store, disk, logger), logger)
}

func (s *TransportSuite) approvedVehicle() *types.TransportVehicle {
	req, err := s.svc.SubmitAddVehicle(s.ctx, "user-1", "9001011234", validVehicle(), pdf())
	s.Require().NoError(err)
	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)
	v, err := s.svc.MyVehicle(s.ctx, "user-1", utils.PtrString(decided.TargetID))
	s.Require().NoError(err)
	return v
}

func (s *TransportSuite) TestNormalizeReg() {
	s.Equal("CA1234KX", NormalizeReg(" ca 1234\tkx "))
	s.Equal("", NormalizeReg("   "))
}

func (s *TransportSuite) TestSubmitAddVehicleValidation() {
	cases := []struct {
		name   string
		mutate func(*AddVehicleInput)
		code   string
	}{
		{"blank reg", func(in *AddVehicleInput) { in.RegNumber = "  " }, "REG_NUMBER_REQUIRED"},
		{"no brand", func(in *AddVehicleInput) { in.Brand = "" }, "BRAND_REQUIRED"},
		{"no model", func(in *AddVehicleInput) { in.Model = " " }, "MODEL_REQUIRED"},
		{"old year", func(in *AddVehicleInput) { in.ManufactureYear = 1899 }, "MANUFACTURE_YEAR_INVALID"},
		{"zero power", func(in *AddVehicleInput) { in.PowerKw = 0 }, "POWER_KW_INVALID"},
		{"huge power", func(in *AddVehicleInput) { in.PowerKw = 2001 }, "POWER_KW_INVALID"},
		{"no euro", func(in *AddVehicleInput) { in.EuroCategory = "" }, "EURO_CATEGORY_REQUIRED"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := validVehicle()
			tc.mutate(&in)
			_, err := s.svc.SubmitAddVehicle(s.ctx, "user-1", "", in, pdf())
			s.Equal(tc.code, apperr.CodeOf(err))
		})
	}

	_, err := s.svc.SubmitAddVehicle(s.ctx, "user-1", "", validVehicle(), nil)
	s.Equal("PDF_REQUIRED", apperr.CodeOf(err))
}

func (s *TransportSuite) TestAddVehicleLifecycle() {
	req, err := s.svc.SubmitAddVehicle(s.ctx, "user-1", "9001011234", validVehicle(), pdf())
	s.Require().NoError(err)
	s.Equal("CA1234KX", utils.PtrString(req.RegNumber))
	s.Equal("9001011234", utils.PtrString(req.OwnerEgn))

	other := validVehicle()
	other.RegNumber = "Ca1234kx"
	_, err = s.svc.SubmitAddVehicle(s.ctx, "user-2", "", other, pdf())
	s.Equal(apperr.KindConflict, apperr.KindOf(err))
	s.Equal("PENDING_ADD_ALREADY_EXISTS", apperr.CodeOf(err))

	decided, err := s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)

	v, err := s.svc.MyVehicle(s.ctx, "user-1", utils.PtrString(decided.TargetID))
	s.Require().NoError(err)
	s.Equal("CA1234KX", v.RegNumber)
	s.Equal("9001011234", v.OwnerEgn)
	s.Equal(85, v.PowerKw)

	_, err = s.svc.SubmitAddVehicle(s.ctx, "user-2", "", other, pdf())
	s.Equal("VEHICLE_WITH_REG_ALREADY_EXISTS", apperr.CodeOf(err))

	_, rc, err := s.svc.VehicleFile(s.ctx, "user-1", v.ID, types.TagRegistrationDoc)
	s.Require().NoError(err)
	s.Require().NoError(rc.Close())

	_, err = s.svc.MyVehicle(s.ctx, "user-2", v.ID)
	s.Equal("VEHICLE_NOT_FOUND", apperr.CodeOf(err))
}

func (s *TransportSuite) TestApproveRechecksRegUniqueness() {
	req, err := s.svc.SubmitAddVehicle(s.ctx, "user-1", "", validVehicle(), pdf())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Vehicles().Create(s.ctx, &types.TransportVehicle{
		ID: "v-x", UserID: "user-9", RegNumber: "ca1234kx", CreatedAt: s.now, UpdatedAt: s.now,
	}))

	_, err = s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Equal("VEHICLE_WITH_REG_ALREADY_EXISTS", apperr.CodeOf(err))

	cur, err := s.svc.AdminGet(s.ctx, req.ID)
	s.Require().NoError(err)
	s.True(cur.Pending())
}

func (s *TransportSuite) TestTechInspectionLifecycle() {
	v := s.approvedVehicle()

	_, err := s.svc.SubmitTechInspection(s.ctx, "user-1", "", TechInput{VehicleID: v.ID}, pdf())
	s.Equal("INSPECTION_DATE_REQUIRED", apperr.CodeOf(err))
	_, err = s.svc.SubmitTechInspection(s.ctx, "user-1", "", TechInput{VehicleID: v.ID, InspectionDate: "04.05.2026"}, pdf())
	s.Equal("INSPECTION_DATE_INVALID", apperr.CodeOf(err))
	_, err = s.svc.SubmitTechInspection(s.ctx, "user-2", "", TechInput{VehicleID: v.ID, InspectionDate: "2026-05-01"}, pdf())
	s.Equal("VEHICLE_NOT_FOUND", apperr.CodeOf(err))

	req, err := s.svc.SubmitTechInspection(s.ctx, "user-1", "", TechInput{VehicleID: v.ID, InspectionDate: "2024-02-29"}, pdf())
	s.Require().NoError(err)
	s.JSONEq(`{"vehicleId":"`+v.ID+`","inspectionDate":"2024-02-29","validUntil":"2025-02-28","regNumber":"CA1234KX","brand":"Skoda","model":"Octavia","inspectionDoc":{"name":"Документ (PDF)"}}`, string(req.Payload))

	_, err = s.svc.SubmitTechInspection(s.ctx, "user-1", "", TechInput{VehicleID: v.ID, InspectionDate: "2026-05-01"}, pdf())
	s.Equal("PENDING_TECH_ALREADY_EXISTS", apperr.CodeOf(err))

	_, err = s.svc.Approve(s.ctx, req.ID, "admin-1", "")
	s.Require().NoError(err)

	cur, err := s.svc.MyVehicle(s.ctx, "user-1", v.ID)
	s.Require().NoError(err)
	s.Require().NotNil(cur.TechInspectionValidUntil)
	s.Equal("2025-02-28", calc.FormatDate(*cur.TechInspectionValidUntil))
	s.Equal("2024-02-29", calc.FormatDate(*cur.TechInspectionDate))

	link, err := filelink.FileID(s.ctx, s.store.FileLinks(), filelink.Key{EntityType: types.EntityVehicle, EntityID: v.ID, Tag: types.TagTechInspectionDoc})
	s.Require().NoError(err)
	s.NotEmpty(link)
}

func (s *TransportSuite) TestAnnualTax() {
	v := s.approvedVehicle()

	quote, err := s.svc.AnnualTaxQuote(s.ctx, "user-1", v.ID)
	s.Require().NoError(err)
	s.Equal(2026, quote.TaxYear)
	s.InDelta(95.37, quote.Amount, 0.001)

	_, err = s.svc.PayAnnualTax(s.ctx, "user-1", v.ID, utils.IntPtr(1899))
	s.Equal("TAX_YEAR_INVALID", apperr.CodeOf(err))

	paid, err := s.svc.PayAnnualTax(s.ctx, "user-1", v.ID, nil)
	s.Require().NoError(err)
	s.Equal(2026, paid.TaxYear)

	s.now = s.now.Add(time.Hour)
	_, err = s.svc.PayAnnualTax(s.ctx, "user-1", v.ID, utils.IntPtr(2026))
	s.Require().NoError(err)
	_, err = s.svc.PayAnnualTax(s.ctx, "user-1", v.ID, utils.IntPtr(2025))
	s.Require().NoError(err)

	payments, err := s.svc.TaxPayments(s.ctx, "user-1", v.ID)
	s.Require().NoError(err)
	s.Require().Len(payments, 2)
	s.Equal(2026, payments[0].TaxYear)
	s.Equal(s.now, payments[0].PaidAt)

	_, err = s.svc.PayAnnualTax(s.ctx, "user-2", v.ID, nil)
	s.Equal("VEHICLE_NOT_FOUND", apperr.CodeOf(err))
}

func (s *TransportSuite) TestVignettes() {
	v := s.approvedVehicle()

	_, err := s.svc.PurchaseVignette(s.ctx, "user-1", "", VignetteInput{VehicleID: v.ID})
	s.Equal("TYPE_REQUIRED", apperr.CodeOf(err))
	_, err = s.svc.PurchaseVignette(s.ctx, "user-1", "", VignetteInput{VehicleID: v.ID, Type: "DAILY"})
	s.Equal("TYPE_INVALID", apperr.CodeOf(err))
	_, err = s.svc.PurchaseVignette(s.ctx, "user-1", "", VignetteInput{Type: "WEEKLY"})
	s.Equal("VEHICLE_ID_REQUIRED", apperr.CodeOf(err))

	weekly, err := s.svc.PurchaseVignette(s.ctx, "user-1", "9001011234", VignetteInput{VehicleID: v.ID, Type: "weekly"})
	s.Require().NoError(err)
	s.Equal(15.0, weekly.Price)
	s.Equal("2026-05-04", calc.FormatDate(weekly.ValidFrom))
	s.Equal("2026-05-11", calc.FormatDate(weekly.ValidUntil))

	_, err = s.svc.PurchaseVignette(s.ctx, "user-1", "", VignetteInput{VehicleID: v.ID, Type: "YEARLY"})
	s.Equal(apperr.KindConflict, apperr.KindOf(err))
	s.Equal("ACTIVE_VIGNETTE_ALREADY_EXISTS", apperr.CodeOf(err))

	s.now = time.Date(2026, 5, 12, 8, 0, 0, 0, time.UTC)
	monthly, err := s.svc.PurchaseVignette(s.ctx, "user-1", "", VignetteInput{VehicleID: v.ID, Type: "MONTHLY", ValidFrom: "2027-01-31"})
	s.Require().NoError(err)
	s.Equal(30.0, monthly.Price)
	s.Equal("2027-02-28", calc.FormatDate(monthly.ValidUntil))

	mine, err := s.svc.MyVignettes(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Len(mine, 2)
}

func (s *TransportSuite) TestFines() {
	s.Require().NoError(s.store.Users().Create(s.ctx, &types.User{ID: "user-1", Egn: "9001011234", Email: "a@b.bg", CreatedAt: s.now, UpdatedAt: s.now}))

	_, err := s.svc.AdminCreateFine(s.ctx, FineInput{Egn: "123", Type: "RED_LIGHT"})
	s.Equal("EGN_INVALID", apperr.CodeOf(err))
	_, err = s.svc.AdminCreateFine(s.ctx, FineInput{Egn: "9001011234"})
	s.Equal("TYPE_REQUIRED", apperr.CodeOf(err))
	_, err = s.svc.AdminCreateFine(s.ctx, FineInput{Egn: "9001011234", Type: "LITTERING"})
	s.Equal("TYPE_INVALID", apperr.CodeOf(err))
	negative := -1.0
	_, err = s.svc.AdminCreateFine(s.ctx, FineInput{Egn: "9001011234", Type: "RED_LIGHT", Amount: &negative})
	s.Equal("AMOUNT_INVALID", apperr.CodeOf(err))

	fine, err := s.svc.AdminCreateFine(s.ctx, FineInput{Egn: " 9001011234 ", Type: "red_light"})
	s.Require().NoError(err)
	s.Equal(150.0, fine.Amount)
	s.Equal("user-1", utils.PtrString(fine.UserID))

	custom := 75.5
	orphan, err := s.svc.AdminCreateFine(s.ctx, FineInput{Egn: "8001011234", Type: "NO_SEATBELT", Amount: &custom})
	s.Require().NoError(err)
	s.Equal(75.5, orphan.Amount)
	s.Nil(orphan.UserID)

	all, err := s.svc.AdminListFines(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	mine, err := s.svc.MyFines(s.ctx, "9001011234")
	s.Require().NoError(err)
	s.Require().Len(mine, 1)

	_, err = s.svc.PayFine(s.ctx, "8001011234", fine.ID)
	s.Equal("FINE_NOT_FOUND", apperr.CodeOf(err))

	paid, err := s.svc.PayFine(s.ctx, "9001011234", fine.ID)
	s.Require().NoError(err)
	s.True(paid.Paid)
	s.Require().NotNil(paid.PaidAt)

	_, err = s.svc.PayFine(s.ctx, "9001011234", fine.ID)
	s.Equal(apperr.KindConflict, apperr.KindOf(err))
	s.Equal("FINE_ALREADY_PAID", apperr.CodeOf(err))
}

func (s *TransportSuite) TestRejectedRequestsLeaveAdminList() {
	req, err := s.svc.SubmitAddVehicle(s.ctx, "user-1", "", validVehicle(), pdf())
	s.Require().NoError(err)
	_, err = s.svc.Reject(s.ctx, req.ID, "admin-1", "unreadable")
	s.Require().NoError(err)

	list, err := s.svc.AdminList(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)

	mine, err := s.svc.MyRequests(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Len(mine, 1)

	_, rc, err := s.svc.RequestFile(s.ctx, "user-1", req.ID, types.TagRegistrationDoc)
	s.Require().NoError(err)
	s.Require().NoError(rc.Close())
}

func (s *TransportSuite) TestTechPayloadValidUntil() {
	p := techPayload{InspectionDate: "01.05.2026"}
	s.Equal("INSPECTION_DATE_INVALID", apperr.CodeOf(p.setValidUntil()))
	s.Empty(p.ValidUntil)

	p = techPayload{InspectionDate: "2024-02-29"}
	s.Require().NoError(p.setValidUntil())
	s.Equal("2025-02-28", p.ValidUntil)
}
