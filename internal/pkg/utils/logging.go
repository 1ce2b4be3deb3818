package utils

import (
	"context"

	"citamed-service/internal/pkg/constvars"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string); ok {
		return requestID
	}
	return ""
}

func GetTenant(ctx context.Context) string {
	if tenant, ok := ctx.Value(constvars.CONTEXT_TENANT_KEY).(string); ok {
		return tenant
	}
	return ""
}
