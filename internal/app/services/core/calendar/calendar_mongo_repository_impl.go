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

// CalendarMongoRepository is the CalendarSource over the tenant's database.
type CalendarMongoRepository struct {
	client  *mongo.Client
	tenants contracts.TenantRegistry
}

func NewCalendarMongoRepository(client *mongo.Client, tenants contracts.TenantRegistry) contracts.CalendarSource {
	return &CalendarMongoRepository{client: client, tenants: tenants}
}

func (r *CalendarMongoRepository) FindDoctorsForProcedure(ctx context.Context, procedureCode string) ([]models.Doctor, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	procedures := r.client.Database(m.database()).Collection(m.collection(constvars.LogicalCollectionProcedures))
	procedureOpts := options.FindOne().SetProjection(procedureProjection(m))
	var procedure models.Procedure
	err = procedures.FindOne(ctx, bson.M{"_id": procedureCode}, procedureOpts).Decode(&procedure)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	doctorsCol := constvars.LogicalCollectionDoctors
	filter := bson.M{}
	if err == nil && len(procedure.RestrictedDoctorIDs) > 0 {
		filter["_id"] = bson.M{"$in": procedure.RestrictedDoctorIDs}
	}

	opts := options.Find().SetProjection(m.projection(doctorsCol, "name", "minimum_age"))
	cursor, err := r.client.Database(m.database()).Collection(m.collection(doctorsCol)).Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var doctors []models.Doctor
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return doctors, nil
}

func (r *CalendarMongoRepository) FindAgenda(ctx context.Context, agendaID string) (*models.Agenda, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionAgendas
	opts := options.FindOne().SetProjection(m.projection(col, "doctor_id", "name"))

	var agenda models.Agenda
	err = r.client.Database(m.database()).Collection(m.collection(col)).FindOne(ctx, bson.M{"_id": agendaID}, opts).Decode(&agenda)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &agenda, nil
}

func (r *CalendarMongoRepository) FindFutureWorkingDays(ctx context.Context, doctorIDs []string, afterDate string) ([]models.WorkingDay, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionWorkingDays
	filter := bson.M{
		m.field(col, "doctor_id"): bson.M{"$in": doctorIDs},
		m.field(col, "date"):      bson.M{"$gt": afterDate},
	}
	opts := options.Find().
		SetProjection(m.projection(col, "doctor_id", "agenda_id", "date", "morning_enabled", "afternoon_enabled")).
		SetSort(bson.D{{Key: m.field(col, "date"), Value: 1}})

	cursor, err := r.client.Database(m.database()).Collection(m.collection(col)).Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var days []models.WorkingDay
	if err := cursor.All(ctx, &days); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return days, nil
}

func (r *CalendarMongoRepository) FindScheduleConfig(ctx context.Context, agendaID, doctorID string) (*models.ScheduleConfig, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionScheduleConfigs
	filter := bson.M{
		m.field(col, "agenda_id"): agendaID,
		m.field(col, "doctor_id"): doctorID,
	}
	opts := options.FindOne().SetProjection(m.projection(col, "agenda_id", "doctor_id", "duration_minutes", "days"))

	var cfg models.ScheduleConfig
	err = r.client.Database(m.database()).Collection(m.collection(col)).FindOne(ctx, filter, opts).Decode(&cfg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &cfg, nil
}

func (r *CalendarMongoRepository) FindBookingsForAgendaAndDate(ctx context.Context, agendaID, date string) ([]models.Appointment, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionAppointments
	filter := bson.M{
		m.field(col, "agenda_id"): agendaID,
		m.field(col, "date"):      date,
		m.field(col, "status"):    bson.M{"$ne": string(models.AppointmentCancelled)},
	}
	opts := options.Find().SetProjection(m.projection(col,
		"agenda_id", "doctor_id", "patient_id", "date", "time_slot", "status"))

	cursor, err := r.client.Database(m.database()).Collection(m.collection(col)).Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Appointment
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return bookings, nil
}
