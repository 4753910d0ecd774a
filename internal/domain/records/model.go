package records

import (
	"time"

	"github.com/google/uuid"
)

// Accepted record types, matching the document classifier's vocabulary.
var recordTypes = map[string]bool{
	"laboratory_report":        true,
	"imaging_report":           true,
	"prescription":             true,
	"discharge_summary":        true,
	"consultation_note":        true,
	"general_medical_document": true,
}

func validRecordType(t string) bool { return recordTypes[t] }

// MedicalRecord is a document pinned to IPFS. The description column holds
// ciphertext at rest; services decrypt it before returning the struct.
type MedicalRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	UploadedBy  uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	RecordType  string    `db:"record_type" json:"record_type"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	ContentHash string    `db:"content_hash" json:"content_hash"`
	CID         string    `db:"cid" json:"cid"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
