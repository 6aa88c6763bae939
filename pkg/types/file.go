package types

import "time"

// AppFile is the metadata row for a stored blob.
type AppFile struct {
	ID           string    `db:"id" json:"id"`
	OwnerUserID  *string   `db:"owner_user_id" json:"ownerUserId"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	SizeBytes    int64     `db:"size_bytes" json:"sizeBytes"`
	StorageKey   string    `db:"storage_key" json:"-"`
	Sha256       string    `db:"sha256" json:"sha256"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type EntityType string

const (
	EntityDocumentRequest EntityType = "DOCUMENT_REQUEST"
	EntityDocument        EntityType = "DOCUMENT"
	EntityPropertyRequest EntityType = "PROPERTY_REQUEST"
	EntityProperty        EntityType = "PROPERTY"
	EntityVehicleRequest  EntityType = "TRANSPORT_VEHICLE_REQUEST"
	EntityVehicle         EntityType = "TRANSPORT_VEHICLE"
	EntityHealthRequest   EntityType = "HEALTH_REQUEST"
	EntityHealthReferral  EntityType = "HEALTH_REFERRAL"
)

type FileTag string

const (
	TagPhoto1            FileTag = "PHOTO_1"
	TagPhoto2            FileTag = "PHOTO_2"
	TagOwnershipDoc      FileTag = "OWNERSHIP_DOC"
	TagSketchPDF         FileTag = "SKETCH_PDF"
	TagRegistrationDoc   FileTag = "REGISTRATION_DOC"
	TagTechInspectionDoc FileTag = "TECH_INSPECTION_DOC"
	TagBookletImage      FileTag = "BOOKLET_IMAGE"
	TagReferralPDF       FileTag = "REFERRAL_PDF"
)

// FileLink maps a tagged role on an entity to a stored file. At most one
// row exists per (entity_type, entity_id, tag).
type FileLink struct {
	ID         string     `db:"id" json:"id"`
	FileID     string     `db:"file_id" json:"fileId"`
	EntityType EntityType `db:"entity_type" json:"entityType"`
	EntityID   string     `db:"entity_id" json:"entityId"`
	Tag        FileTag    `db:"tag" json:"tag"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
