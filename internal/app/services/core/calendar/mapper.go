package calendar

import (
	"context"

	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/exceptions"
	"citamed-service/internal/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// schemaMapper translates the logical schema into one tenant's physical
// layout. Only collection names and top-level field names are mapped; line
// item subdocument fields are fixed.
type schemaMapper struct {
	tenant *models.TenantConfig
}

func (m schemaMapper) database() string {
	return m.tenant.Database
}

func (m schemaMapper) collection(logical string) string {
	return m.tenant.PhysicalCollection(logical)
}

func (m schemaMapper) field(logicalCollection, logicalField string) string {
	return m.tenant.PhysicalField(logicalCollection, logicalField)
}

// projection renames physical fields back to their logical names so query
// results decode straight into the models. _id is never remapped.
func (m schemaMapper) projection(logicalCollection string, logicalFields ...string) bson.M {
	projection := bson.M{"_id": 1}
	for _, logical := range logicalFields {
		projection[logical] = "$" + m.field(logicalCollection, logical)
	}
	return projection
}

// procedureProjection covers every procedure field the services read; shared
// by the procedure repository and the doctor-eligibility lookup.
func procedureProjection(m schemaMapper) bson.M {
	return m.projection(constvars.LogicalCollectionProcedures,
		"name", "units", "requires_own_schedule", "restricted_doctor_ids")
}

// mapperFor resolves the request's tenant into a schemaMapper.
func mapperFor(ctx context.Context, tenants contracts.TenantRegistry) (schemaMapper, error) {
	tenantID := utils.GetTenant(ctx)
	if tenantID == "" {
		return schemaMapper{}, exceptions.ErrMissingTenant(nil)
	}
	cfg, err := tenants.Resolve(ctx, tenantID)
	if err != nil {
		return schemaMapper{}, err
	}
	return schemaMapper{tenant: cfg}, nil
}
