package emergency

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyResolved = errors.New("alert already resolved")
)

type Repository interface {
	CreateAlert(ctx context.Context, a *Alert) error
	GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error)
	ListAlerts(ctx context.Context, status string, limit, offset int) ([]*Alert, int, error)
	ListAlertsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error)
	ResolveAlert(ctx context.Context, id, resolvedBy uuid.UUID) error

	CreateAmbulanceRequest(ctx context.Context, r *AmbulanceRequest) error
	GetAmbulanceByTracking(ctx context.Context, trackingID string) (*AmbulanceRequest, error)
	UpdateAmbulanceStatus(ctx context.Context, id uuid.UUID, status string) error
	ListAmbulanceRequests(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AmbulanceRequest, int, error)
}
