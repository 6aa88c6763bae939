package types

import (
	"encoding/json"
	"time"
)

type RequestDomain string

const (
	DomainDocument  RequestDomain = "DOCUMENT"
	DomainProperty  RequestDomain = "PROPERTY"
	DomainTransport RequestDomain = "TRANSPORT"
	DomainHealth    RequestDomain = "HEALTH"
)

var AllRequestDomains = []RequestDomain{DomainDocument, DomainProperty, DomainTransport, DomainHealth}

func (d RequestDomain) Valid() bool {
	switch d {
	case DomainDocument, DomainProperty, DomainTransport, DomainHealth:
		return true
	}
	return false
}

// RequestEntityType is the file link entity type used for attachments
// uploaded alongside a request of this domain.
func (d RequestDomain) RequestEntityType() EntityType {
	switch d {
	case DomainDocument:
		return EntityDocumentRequest
	case DomainProperty:
		return EntityPropertyRequest
	case DomainTransport:
		return EntityVehicleRequest
	case DomainHealth:
		return EntityHealthRequest
	}
	return EntityType(string(d) + "_REQUEST")
}

// AlreadyDecidedCode is the conflict code reported when a decision targets
// a request that left PENDING. Health has always reported its own code.
func (d RequestDomain) AlreadyDecidedCode() string {
	if d == DomainHealth {
		return "REQUEST_NOT_PENDING"
	}
	return "REQUEST_ALREADY_DECIDED"
}

type RequestKind string

const (
	KindAddDocument    RequestKind = "ADD_DOCUMENT"
	KindRemoveDocument RequestKind = "REMOVE_DOCUMENT"

	KindAddProperty    RequestKind = "ADD_PROPERTY"
	KindRemoveProperty RequestKind = "REMOVE_PROPERTY"
	KindTaxAssessment  RequestKind = "TAX_ASSESSMENT"
	KindSketch         RequestKind = "SKETCH"

	KindAddVehicle     RequestKind = "ADD_VEHICLE"
	KindTechInspection RequestKind = "TECH_INSPECTION"

	KindAddPersonalDoctor    RequestKind = "ADD_PERSONAL_DOCTOR"
	KindRemovePersonalDoctor RequestKind = "REMOVE_PERSONAL_DOCTOR"
	KindAddReferral          RequestKind = "ADD_REFERRAL"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

type Verdict string

const (
	VerdictApprove Verdict = "APPROVE"
	VerdictReject  Verdict = "REJECT"
)

// Request is a user-submitted intent awaiting an admin decision. One table
// holds the requests of every domain.
type Request struct {
	ID               string          `db:"id" json:"id"`
	Domain           RequestDomain   `db:"domain" json:"domain"`
	UserID           string          `db:"user_id" json:"userId"`
	Kind             RequestKind     `db:"kind" json:"kind"`
	Status           RequestStatus   `db:"status" json:"status"`
	Payload          json.RawMessage `db:"payload" json:"payload"` // jsonb
	TargetID         *string         `db:"target_id" json:"targetId"`
	DocumentType     *DocumentType   `db:"document_type" json:"documentType,omitempty"`
	RegNumber        *string         `db:"reg_number" json:"regNumber,omitempty"`
	OwnerEgn         *string         `db:"owner_egn" json:"ownerEgn,omitempty"`
	AdminNote        string          `db:"admin_note" json:"adminNote"`
	DecidedAt        *time.Time      `db:"decided_at" json:"decidedAt"`
	DecidedByAdminID *string         `db:"decided_by_admin_id" json:"decidedByAdminId"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

func (r *Request) Pending() bool {
	return r.Status == RequestStatusPending
}
