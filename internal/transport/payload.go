package transport

import (
	"regexp"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeReg uppercases a registration number and drops all whitespace.
func NormalizeReg(reg string) string {
	return strings.ToUpper(whitespace.ReplaceAllString(strings.TrimSpace(reg), ""))
}

type AddVehicleInput struct {
	RegNumber       string `form:"regNumber" json:"regNumber"`
	Brand           string `form:"brand" json:"brand"`
	Model           string `form:"model" json:"model"`
	ManufactureYear int    `form:"manufactureYear" json:"manufactureYear"`
	PowerKw         int    `form:"powerKw" json:"powerKw"`
	EuroCategory    string `form:"euroCategory" json:"euroCategory"`
}

type TechInput struct {
	VehicleID      string `form:"vehicleId" json:"vehicleId"`
	InspectionDate string `form:"inspectionDate" json:"inspectionDate"`
}

type label struct {
	Name string `json:"name"`
}

var pdfLabel = label{Name: "Документ (PDF)"}

type addVehiclePayload struct {
	RegNumber       string `json:"regNumber"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	ManufactureYear int    `json:"manufactureYear"`
	PowerKw         int    `json:"powerKw"`
	EuroCategory    string `json:"euroCategory"`
	RegistrationDoc label  `json:"registrationDoc"`
}

func newAddVehiclePayload(in AddVehicleInput) addVehiclePayload {
	return addVehiclePayload{
		RegNumber:       NormalizeReg(in.RegNumber),
		Brand:           strings.TrimSpace(in.Brand),
		Model:           strings.TrimSpace(in.Model),
		ManufactureYear: in.ManufactureYear,
		PowerKw:         in.PowerKw,
		EuroCategory:    strings.TrimSpace(in.EuroCategory),
		RegistrationDoc: pdfLabel,
	}
}

func (p addVehiclePayload) Validate() error {
	switch {
	case p.RegNumber == "":
		return apperr.Validation("REG_NUMBER_REQUIRED")
	case p.Brand == "":
		return apperr.Validation("BRAND_REQUIRED")
	case p.Model == "":
		return apperr.Validation("MODEL_REQUIRED")
	case p.ManufactureYear < 1900 || p.ManufactureYear > 2100:
		return apperr.Validation("MANUFACTURE_YEAR_INVALID")
	case p.PowerKw <= 0 || p.PowerKw > 2000:
		return apperr.Validation("POWER_KW_INVALID")
	case p.EuroCategory == "":
		return apperr.Validation("EURO_CATEGORY_REQUIRED")
	}
	return nil
}

type techPayload struct {
	VehicleID      string `json:"vehicleId"`
	InspectionDate string `json:"inspectionDate"`
	ValidUntil     string `json:"validUntil"`
	RegNumber      string `json:"regNumber"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	InspectionDoc  label  `json:"inspectionDoc"`
}

func (p techPayload) Validate() error {
	if strings.TrimSpace(p.VehicleID) == "" {
		return apperr.Validation("VEHICLE_ID_REQUIRED")
	}
	if strings.TrimSpace(p.InspectionDate) == "" {
		return apperr.Validation("INSPECTION_DATE_REQUIRED")
	}
	if _, err := calc.ParseDate(p.InspectionDate); err != nil {
		return apperr.Validation("INSPECTION_DATE_INVALID")
	}
	return nil
}

// setValidUntil derives the end of the inspection window from InspectionDate.
func (p *techPayload) setValidUntil() error {
	inspection, err := calc.ParseDate(p.InspectionDate)
	if err != nil {
		return apperr.Validation("INSPECTION_DATE_INVALID")
	}
	p.ValidUntil = calc.FormatDate(calc.TechInspectionValidUntil(inspection))
	return nil
}
