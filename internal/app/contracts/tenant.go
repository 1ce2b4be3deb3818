package contracts

import (
	"context"

	"citamed-service/internal/app/models"
)

// TenantRegistry resolves a tenant identifier to its schema mapping.
type TenantRegistry interface {
	Resolve(ctx context.Context, tenantID string) (*models.TenantConfig, error)
	// ListTenantIDs returns every configured tenant, for background jobs
	// that sweep all tenants.
	ListTenantIDs(ctx context.Context) ([]string, error)
}
