package models

// TenantConfig maps the logical schema the services speak to one tenant's
// physical layout. Missing entries fall back to the logical name so a tenant
// with a conventional layout needs no mapping at all.
type TenantConfig struct {
	ID          string                       `json:"id" bson:"_id"`
	Name        string                       `json:"name" bson:"name"`
	Database    string                       `json:"database" bson:"database"`
	Collections map[string]string            `json:"collections,omitempty" bson:"collections,omitempty"`
	Fields      map[string]map[string]string `json:"fields,omitempty" bson:"fields,omitempty"`
}

func (t TenantConfig) PhysicalCollection(logical string) string {
	if physical, ok := t.Collections[logical]; ok {
		return physical
	}
	return logical
}

func (t TenantConfig) PhysicalField(logicalCollection, logicalField string) string {
	if fields, ok := t.Fields[logicalCollection]; ok {
		if physical, ok := fields[logicalField]; ok {
			return physical
		}
	}
	return logicalField
}
