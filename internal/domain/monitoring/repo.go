package monitoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateRecord(ctx context.Context, rec *HealthRecord) error
	ListRecords(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error)
	CreateAlert(ctx context.Context, a *HealthAlert) error
	ListAlerts(ctx context.Context, patientID uuid.UUID, severity string, limit, offset int) ([]*HealthAlert, int, error)
	AcknowledgeAlert(ctx context.Context, id uuid.UUID) error
}
