package types

import "time"

type DocumentType string

const (
	DocumentTypeIDCard        DocumentType = "ID_CARD"
	DocumentTypePassport      DocumentType = "PASSPORT"
	DocumentTypeDriverLicense DocumentType = "DRIVER_LICENSE"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeIDCard, DocumentTypePassport, DocumentTypeDriverLicense:
		return true
	}
	return false
}

// Document is an issued personal document. At most one per (user, type).
type Document struct {
	ID         string       `db:"id" json:"id"`
	UserID     string       `db:"user_id" json:"userId"`
	Type       DocumentType `db:"type" json:"type"`
	FirstName  string       `db:"first_name" json:"firstName"`
	MiddleName string       `db:"middle_name" json:"middleName"`
	LastName   string       `db:"last_name" json:"lastName"`
	Egn        string       `db:"egn" json:"egn"`
	Gender     string       `db:"gender" json:"gender"`
	Dob        time.Time    `db:"dob" json:"dob"`
	DocNumber  string       `db:"doc_number" json:"docNumber"`
	ValidUntil time.Time    `db:"valid_until" json:"validUntil"`
	IssuedAt   string       `db:"issued_at" json:"issuedAt"`
	BirthPlace string       `db:"birth_place" json:"birthPlace"`
	Address    string       `db:"address" json:"address"`
	Categories []string     `db:"categories" json:"categories"` // jsonb array, driver licenses only
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
}
