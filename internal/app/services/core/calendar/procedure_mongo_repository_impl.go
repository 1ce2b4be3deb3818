package calendar

import (
	"context"

	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProcedureMongoRepository struct {
	client  *mongo.Client
	tenants contracts.TenantRegistry
}

func NewProcedureMongoRepository(client *mongo.Client, tenants contracts.TenantRegistry) contracts.ProcedureRepository {
	return &ProcedureMongoRepository{client: client, tenants: tenants}
}

func (r *ProcedureMongoRepository) FindProcedureByCode(ctx context.Context, code string) (*models.Procedure, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionProcedures
	opts := options.FindOne().SetProjection(procedureProjection(m))

	var procedure models.Procedure
	err = r.client.Database(m.database()).
		Collection(m.collection(col)).
		FindOne(ctx, bson.M{"_id": code}, opts).Decode(&procedure)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &procedure, nil
}

func (r *ProcedureMongoRepository) FindGroupContainingCode(ctx context.Context, code string) (*models.CupsGroup, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionCupsGroups
	filter := bson.M{m.field(col, "codes"): code}
	opts := options.FindOne().SetProjection(m.projection(col, "codes", "max", "payer_class"))

	var group models.CupsGroup
	err = r.client.Database(m.database()).Collection(m.collection(col)).FindOne(ctx, filter, opts).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &group, nil
}

func (r *ProcedureMongoRepository) ListGroups(ctx context.Context) ([]models.CupsGroup, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionCupsGroups
	opts := options.Find().SetProjection(m.projection(col, "codes", "max", "payer_class"))
	cursor, err := r.client.Database(m.database()).
		Collection(m.collection(col)).
		Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var groups []models.CupsGroup
	for cursor.Next(ctx) {
		var group models.CupsGroup
		if err := cursor.Decode(&group); err != nil {
			return nil, exceptions.ErrMongoDBIterateDocuments(err)
		}
		groups = append(groups, group)
	}
	if err := cursor.Err(); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return groups, nil
}
