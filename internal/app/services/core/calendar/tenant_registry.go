package calendar

import (
	"context"
	"sync"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TenantMongoRegistry reads tenant schema mappings from the control database
// and caches them for the process lifetime; tenant onboarding is an
// operational event, not a hot path.
type TenantMongoRegistry struct {
	collection *mongo.Collection
	mu         sync.RWMutex
	cache      map[string]*models.TenantConfig
}

func NewTenantMongoRegistry(client *mongo.Client, cfg *config.InternalConfig) contracts.TenantRegistry {
	return &TenantMongoRegistry{
		collection: client.Database(cfg.MongoDB.ControlDBName).Collection(cfg.MongoDB.TenantsCollection),
		cache:      make(map[string]*models.TenantConfig),
	}
}

func (r *TenantMongoRegistry) Resolve(ctx context.Context, tenantID string) (*models.TenantConfig, error) {
	r.mu.RLock()
	cached, ok := r.cache[tenantID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var cfg models.TenantConfig
	err := r.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&cfg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, exceptions.ErrUnknownTenant(nil, tenantID)
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	r.mu.Lock()
	r.cache[tenantID] = &cfg
	r.mu.Unlock()
	return &cfg, nil
}

func (r *TenantMongoRegistry) ListTenantIDs(ctx context.Context) ([]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var tenantIDs []string
	for cursor.Next(ctx) {
		var cfg models.TenantConfig
		if err := cursor.Decode(&cfg); err != nil {
			return nil, exceptions.ErrMongoDBIterateDocuments(err)
		}
		tenantIDs = append(tenantIDs, cfg.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return tenantIDs, nil
}
