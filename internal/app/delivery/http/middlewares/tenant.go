package middlewares

import (
	"context"
	"net/http"

	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/exceptions"
	"citamed-service/internal/pkg/utils"
)

// TenantResolver requires the tenant header on every scheduling route and
// rejects identifiers the registry does not know before any work is queued.
func (m *Middlewares) TenantResolver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(constvars.HeaderXTenantID)
		if tenantID == "" {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrMissingTenant(nil))
			return
		}

		if _, err := m.Tenants.Resolve(r.Context(), tenantID); err != nil {
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_TENANT_KEY, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
