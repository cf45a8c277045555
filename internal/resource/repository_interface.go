package resource

import "context"

type Repository interface {
	CreateResource(ctx context.Context, r *Resource, hours []OperatingHours) (*Resource, error)
	GetResourceByID(ctx context.Context, id int64) (*Resource, error)
	GetAllResources(ctx context.Context) ([]Resource, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	GetOperatingHours(ctx context.Context, resourceID int64) ([]OperatingHours, error)
	ReplaceOperatingHours(ctx context.Context, resourceID int64, hours []OperatingHours) ([]OperatingHours, error)
}
