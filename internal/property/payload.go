package property

import (
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

const (
	minPurchaseYear = 1900
	maxPurchaseYear = 2100
)

// AddInput is the ADD_PROPERTY form.
type AddInput struct {
	Type         string `form:"type" json:"type"`
	Oblast       string `form:"oblast" json:"oblast"`
	Place        string `form:"place" json:"place"`
	Address      string `form:"address" json:"address"`
	AreaSqm      int    `form:"areaSqm" json:"areaSqm"`
	PurchaseYear int    `form:"purchaseYear" json:"purchaseYear"`
}

type TaxInput struct {
	PropertyID   string  `form:"propertyId" json:"propertyId"`
	Neighborhood string  `form:"neighborhood" json:"neighborhood"`
	Purpose      string  `form:"purpose" json:"purpose"`
	PurposeOther *string `form:"purposeOther" json:"purposeOther"`
	// HasAdjParts is "Да" or "Не".
	HasAdjParts string `form:"hasAdjParts" json:"hasAdjParts"`
}

type SketchInput struct {
	PropertyID string `form:"propertyId" json:"propertyId"`
	DocType    string `form:"docType" json:"docType"`
	TermDays   *int   `form:"termDays" json:"termDays"`
}

type label struct {
	Name string `json:"name"`
}

var ownershipLabel = label{Name: "Документ (PDF)"}

type addPayload struct {
	Type         string `json:"type"`
	Oblast       string `json:"oblast"`
	Place        string `json:"place"`
	Address      string `json:"address"`
	AreaSqm      int    `json:"areaSqm"`
	PurchaseYear int    `json:"purchaseYear"`
}

func (p addPayload) Validate() error {
	switch {
	case strings.TrimSpace(p.Type) == "":
		return apperr.Validation("TYPE_REQUIRED")
	case strings.TrimSpace(p.Oblast) == "":
		return apperr.Validation("OBLAST_REQUIRED")
	case strings.TrimSpace(p.Place) == "":
		return apperr.Validation("PLACE_REQUIRED")
	case strings.TrimSpace(p.Address) == "":
		return apperr.Validation("ADDRESS_REQUIRED")
	case p.AreaSqm <= 0:
		return apperr.Validation("AREA_REQUIRED")
	case p.PurchaseYear < minPurchaseYear || p.PurchaseYear > maxPurchaseYear:
		return apperr.Validation("PURCHASE_YEAR_INVALID")
	}
	return nil
}

// snapshot copies the property as it looked when a request was filed. The
// tax materializer prefers its type, oblast and area over the live row.
type snapshot struct {
	Type         *string `json:"type,omitempty"`
	Oblast       *string `json:"oblast,omitempty"`
	Place        string  `json:"place"`
	Address      string  `json:"address"`
	AreaSqm      *int    `json:"areaSqm,omitempty"`
	PurchaseYear int     `json:"purchaseYear"`
	OwnershipDoc label   `json:"ownershipDoc"`
}

func snapshotOf(p *types.Property) snapshot {
	typ, oblast, area := p.Type, p.Oblast, p.AreaSqm
	return snapshot{
		Type:         &typ,
		Oblast:       &oblast,
		Place:        p.Place,
		Address:      p.Address,
		AreaSqm:      &area,
		PurchaseYear: p.PurchaseYear,
		OwnershipDoc: ownershipLabel,
	}
}

type removePayload struct {
	PropertyID string `json:"propertyId"`
	snapshot
	Reason string `json:"reason"`
}

func (p removePayload) Validate() error {
	return requirePropertyID(p.PropertyID)
}

type taxPayload struct {
	PropertyID   string  `json:"propertyId"`
	Neighborhood string  `json:"neighborhood"`
	District     string  `json:"district"`
	Purpose      string  `json:"purpose"`
	PurposeOther *string `json:"purposeOther,omitempty"`
	HasAdjParts  string  `json:"hasAdjParts"`
	snapshot
}

func (p taxPayload) Validate() error {
	if err := requirePropertyID(p.PropertyID); err != nil {
		return err
	}
	if strings.TrimSpace(p.Neighborhood) == "" && strings.TrimSpace(p.District) == "" {
		return apperr.Validation("NEIGHBORHOOD_REQUIRED")
	}
	if strings.TrimSpace(p.Purpose) == "" {
		return apperr.Validation("PURPOSE_REQUIRED")
	}
	return nil
}

// hasParts reads the yes/no answer, defaulting to no.
func (p taxPayload) hasParts() bool {
	answer := p.HasAdjParts
	if answer == "" {
		answer = "Не"
	}
	return strings.EqualFold(answer, "Да")
}

type sketchPayload struct {
	PropertyID string `json:"propertyId"`
	DocType    string `json:"docType"`
	TermDays   int    `json:"termDays"`
	Term       string `json:"term"`
	snapshot
}

func (p sketchPayload) Validate() error {
	if err := requirePropertyID(p.PropertyID); err != nil {
		return err
	}
	if p.TermDays != 3 && p.TermDays != 7 {
		return apperr.Validation("TERM_DAYS_MUST_BE_3_OR_7")
	}
	return nil
}

func (p sketchPayload) docType() types.SketchDocType {
	switch t := types.SketchDocType(strings.ToUpper(strings.TrimSpace(p.DocType))); t {
	case types.SketchDocTypeSkica, types.SketchDocTypeSchema:
		return t
	}
	return types.SketchDocTypeSkica
}

func (p sketchPayload) termDays() int {
	if p.TermDays == 3 || p.TermDays == 7 {
		return p.TermDays
	}
	if strings.EqualFold(p.Term, "fast") {
		return 3
	}
	return 7
}

func requirePropertyID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("PROPERTY_ID_REQUIRED")
	}
	return nil
}
