package middlewares

import (
	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log            *zap.Logger
	Tenants        contracts.TenantRegistry
	InternalConfig *config.InternalConfig
}
