package documents

import (
	"regexp"
	"strings"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

var (
	egnPattern       = regexp.MustCompile(`^\d{10}$`)
	docNumberPattern = regexp.MustCompile(`^\d{9}$`)
)

// AddInput is the citizen's ADD_DOCUMENT form.
type AddInput struct {
	Type       string   `form:"type" json:"type"`
	FirstName  string   `form:"firstName" json:"firstName"`
	MiddleName string   `form:"middleName" json:"middleName"`
	LastName   string   `form:"lastName" json:"lastName"`
	Egn        string   `form:"egn" json:"egn"`
	Gender     string   `form:"gender" json:"gender"`
	Dob        string   `form:"dob" json:"dob"`
	ValidUntil string   `form:"validUntil" json:"validUntil"`
	DocNumber  string   `form:"docNumber" json:"docNumber"`
	BirthPlace string   `form:"birthPlace" json:"birthPlace"`
	Address    string   `form:"address" json:"address"`
	IssuedAt   string   `form:"issuedAt" json:"issuedAt"`
	Categories []string `form:"categories" json:"categories"`
}

type label struct {
	Name string `json:"name"`
}

type addPayload struct {
	Type         types.DocumentType `json:"type"`
	FirstName    string             `json:"firstName"`
	MiddleName   string             `json:"middleName"`
	LastName     string             `json:"lastName"`
	Egn          string             `json:"egn"`
	Gender       string             `json:"gender"`
	Dob          string             `json:"dob"`
	ValidUntil   string             `json:"validUntil"`
	DocNumber    string             `json:"docNumber"`
	BirthPlace   string             `json:"birthPlace"`
	Address      string             `json:"address"`
	IssuedAt     string             `json:"issuedAt"`
	Categories   []string           `json:"categories"`
	Photo1       label              `json:"photo1"`
	Photo2       label              `json:"photo2"`
	UserFullName string             `json:"userFullName"`
	UserEgn      string             `json:"userEgn"`

	today time.Time
}

func newAddPayload(in AddInput, userEgn string, today time.Time) addPayload {
	p := addPayload{
		Type:       types.DocumentType(strings.ToUpper(strings.TrimSpace(in.Type))),
		FirstName:  strings.TrimSpace(in.FirstName),
		MiddleName: strings.TrimSpace(in.MiddleName),
		LastName:   strings.TrimSpace(in.LastName),
		Egn:        strings.TrimSpace(in.Egn),
		Gender:     strings.ToLower(strings.TrimSpace(in.Gender)),
		Dob:        strings.TrimSpace(in.Dob),
		ValidUntil: strings.TrimSpace(in.ValidUntil),
		DocNumber:  strings.TrimSpace(in.DocNumber),
		BirthPlace: strings.TrimSpace(in.BirthPlace),
		Address:    strings.TrimSpace(in.Address),
		IssuedAt:   strings.TrimSpace(in.IssuedAt),
		Categories: []string{},
		Photo1:     label{Name: "Снимка 1"},
		Photo2:     label{Name: "Снимка 2"},
		today:      calc.Day(today),
	}

	if p.Type == types.DocumentTypeDriverLicense {
		for _, c := range in.Categories {
			if c = strings.TrimSpace(c); c != "" {
				p.Categories = append(p.Categories, c)
			}
		}
	}

	p.UserFullName = utils.CollapseSpaces(p.FirstName + " " + p.MiddleName + " " + p.LastName)
	p.UserEgn = strings.TrimSpace(userEgn)
	if p.UserEgn == "" {
		p.UserEgn = p.Egn
	}
	return p
}

func (p addPayload) Validate() error {
	if p.Type == "" {
		return apperr.Validation("DOC_TYPE_REQUIRED")
	}
	if !p.Type.Valid() {
		return apperr.Validation("DOC_TYPE_INVALID")
	}

	switch {
	case p.FirstName == "":
		return apperr.Validation("FIRST_NAME_REQUIRED")
	case p.MiddleName == "":
		return apperr.Validation("MIDDLE_NAME_REQUIRED")
	case p.LastName == "":
		return apperr.Validation("LAST_NAME_REQUIRED")
	}

	if !egnPattern.MatchString(p.Egn) {
		return apperr.Validation("EGN_INVALID")
	}

	if p.Gender == "" {
		return apperr.Validation("GENDER_REQUIRED")
	}
	if p.Gender != "male" && p.Gender != "female" {
		return apperr.Validation("GENDER_INVALID")
	}

	if p.Dob == "" {
		return apperr.Validation("DOB_REQUIRED")
	}
	dob, err := calc.ParseDate(p.Dob)
	if err != nil {
		return apperr.Validation("DOB_INVALID")
	}
	if dob.After(calc.AddMonths(p.today, -18*12)) {
		return apperr.Validation("DOB_UNDER_18")
	}

	if p.ValidUntil == "" {
		return apperr.Validation("VALID_UNTIL_REQUIRED")
	}
	validUntil, err := calc.ParseDate(p.ValidUntil)
	if err != nil {
		return apperr.Validation("VALID_UNTIL_INVALID")
	}
	if validUntil.Before(p.today) {
		return apperr.Validation("VALID_UNTIL_PAST")
	}

	if !docNumberPattern.MatchString(p.DocNumber) {
		return apperr.Validation("DOC_NUMBER_INVALID")
	}

	switch {
	case p.BirthPlace == "":
		return apperr.Validation("BIRTH_PLACE_REQUIRED")
	case p.Address == "":
		return apperr.Validation("ADDRESS_REQUIRED")
	case p.IssuedAt == "":
		return apperr.Validation("ISSUED_AT_REQUIRED")
	}

	if p.Type == types.DocumentTypeDriverLicense && len(p.Categories) == 0 {
		return apperr.Validation("CATEGORIES_REQUIRED")
	}
	return nil
}

// removePayload snapshots the document as it was when removal was asked
// for.
type removePayload struct {
	DocumentID string             `json:"documentId"`
	Reason     string             `json:"reason"`
	Type       types.DocumentType `json:"type"`
	DocNumber  string             `json:"docNumber"`
	ValidUntil string             `json:"validUntil"`
}

func (p removePayload) Validate() error {
	if p.DocumentID == "" {
		return apperr.Validation("DOCUMENT_ID_REQUIRED")
	}
	return nil
}
