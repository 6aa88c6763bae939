package types

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrAdminNotFound         = errors.New("admin not found")
	ErrRequestNotFound       = errors.New("request not found")
	ErrFileNotFound          = errors.New("file not found")
	ErrFileLinkNotFound      = errors.New("file link not found")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrPropertyNotFound      = errors.New("property not found")
	ErrTaxAssessmentNotFound = errors.New("tax assessment not found")
	ErrSketchNotFound        = errors.New("sketch not found")
	ErrDebtNotFound          = errors.New("debt not found")
	ErrVehicleNotFound       = errors.New("vehicle not found")
	ErrVehicleTaxNotFound    = errors.New("vehicle tax payment not found")
	ErrFineNotFound          = errors.New("fine not found")
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrHealthProfileNotFound = errors.New("health profile not found")
	ErrReferralNotFound      = errors.New("referral not found")
	ErrReportNotFound        = errors.New("problem report not found")

	ErrAppointmentSlotTaken = errors.New("appointment slot taken")
	ErrDuplicateKey         = errors.New("duplicate key")
)
