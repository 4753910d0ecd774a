package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("consultation not found")
	ErrNotScheduled = errors.New("consultation is not in scheduled state")
)

type Repository interface {
	Create(ctx context.Context, c *Consultation) error
	Get(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Update(ctx context.Context, c *Consultation) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
}
