package health

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

var practiceNumberPattern = regexp.MustCompile(`^[0-9]{10}$`)

func validPracticeNumber(pn string) bool {
	return practiceNumberPattern.MatchString(pn)
}

type AddDoctorInput struct {
	PracticeNumber string `json:"practiceNumber"`
	// Doctor is an optional snapshot prepared by the client. It is kept
	// verbatim in the request payload.
	Doctor json.RawMessage `json:"doctor,omitempty"`
}

// doctorSnapshot is the copy of a registry entry stored on a profile.
type doctorSnapshot struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PracticeNumber string `json:"practiceNumber"`
	RzokNo         string `json:"rzokNo"`
	HealthRegion   string `json:"healthRegion"`
	Shift          int    `json:"shift"`
	Mobile         string `json:"mobile"`
	Oblast         string `json:"oblast"`
	City           string `json:"city"`
	Street         string `json:"street"`
}

func snapshotOf(d *types.HealthDoctor) json.RawMessage {
	raw, _ := json.Marshal(doctorSnapshot{
		ID:             d.ID,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		PracticeNumber: d.PracticeNumber,
		RzokNo:         d.RzokNo,
		HealthRegion:   d.HealthRegion,
		Shift:          d.Shift,
		Mobile:         d.Mobile,
		Oblast:         d.Oblast,
		City:           d.City,
		Street:         d.Street,
	})
	return raw
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

type addDoctorPayload struct {
	PracticeNumber string          `json:"practiceNumber"`
	Doctor         json.RawMessage `json:"doctor,omitempty"`
}

func (p addDoctorPayload) Validate() error {
	if !validPracticeNumber(p.PracticeNumber) {
		return apperr.Validation("PRACTICE_NUMBER_INVALID")
	}
	return nil
}

type removeDoctorPayload struct{}

func (removeDoctorPayload) Validate() error {
	return nil
}

type referralPayload struct {
	Title string `json:"title"`
}

func (p referralPayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return apperr.Validation("TITLE_REQUIRED")
	}
	return nil
}
