package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("medical record not found")

type Repository interface {
	Create(ctx context.Context, rec *MedicalRecord) error
	Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, recordType string, limit, offset int) ([]*MedicalRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
