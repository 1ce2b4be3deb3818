package calendar

import (
	"context"
	"time"

	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingMongoRepository is the write side over the tenant's appointments
// collection. Documents are written with the tenant's physical field names
// and read back through logical-name projections.
type BookingMongoRepository struct {
	client  *mongo.Client
	tenants contracts.TenantRegistry
}

func NewBookingMongoRepository(client *mongo.Client, tenants contracts.TenantRegistry) contracts.BookingStore {
	return &BookingMongoRepository{client: client, tenants: tenants}
}

func (r *BookingMongoRepository) appointments(m schemaMapper) *mongo.Collection {
	return r.client.Database(m.database()).Collection(m.collection(constvars.LogicalCollectionAppointments))
}

func (r *BookingMongoRepository) InsertAppointment(ctx context.Context, appointment *models.Appointment) (string, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return "", err
	}

	col := constvars.LogicalCollectionAppointments
	doc := bson.M{
		m.field(col, "agenda_id"):  appointment.AgendaID,
		m.field(col, "doctor_id"):  appointment.DoctorID,
		m.field(col, "patient_id"): appointment.PatientID,
		m.field(col, "date"):       appointment.Date,
		m.field(col, "time_slot"):  appointment.TimeSlot,
		m.field(col, "status"):     string(appointment.Status),
		m.field(col, "created_at"): appointment.CreatedAt,
		m.field(col, "updated_at"): appointment.UpdatedAt,
	}
	if appointment.Notes != "" {
		doc[m.field(col, "notes")] = appointment.Notes
	}
	if len(appointment.ProcedureLines) > 0 {
		doc[m.field(col, "procedure_lines")] = appointment.ProcedureLines
	}

	result, err := r.appointments(m).InsertOne(ctx, doc)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *BookingMongoRepository) FindAppointmentByID(ctx context.Context, bookingID string) (*models.Appointment, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	objectID, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return nil, exceptions.ErrMongoDBNotObjectID(err)
	}

	col := constvars.LogicalCollectionAppointments
	opts := options.FindOne().SetProjection(m.projection(col,
		"agenda_id", "doctor_id", "patient_id", "date", "time_slot", "status", "notes", "procedure_lines"))

	var appointment models.Appointment
	err = r.appointments(m).FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	appointment.ID = bookingID
	return &appointment, nil
}

func (r *BookingMongoRepository) UpdateAppointmentStatus(ctx context.Context, bookingID string, status models.AppointmentStatus) error {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return err
	}

	objectID, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}

	col := constvars.LogicalCollectionAppointments
	update := bson.M{"$set": bson.M{
		m.field(col, "status"):     string(status),
		m.field(col, "updated_at"): time.Now().UTC(),
	}}
	_, err = r.appointments(m).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *BookingMongoRepository) FindPatientBookingsByStatus(ctx context.Context, patientID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return nil, err
	}

	col := constvars.LogicalCollectionAppointments
	filter := bson.M{
		m.field(col, "patient_id"): patientID,
		m.field(col, "status"):     string(status),
	}
	// TimeSlot keys are fixed-width, so this sort is chronological.
	opts := options.Find().
		SetProjection(m.projection(col, "agenda_id", "doctor_id", "patient_id", "date", "time_slot", "status")).
		SetSort(bson.D{{Key: m.field(col, "time_slot"), Value: 1}})

	cursor, err := r.appointments(m).Find(ctx, filter, opts)
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

func (r *BookingMongoRepository) CountFutureBookingsWithProcedure(ctx context.Context, patientID, procedureCode, fromDate string) (int64, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return 0, err
	}

	col := constvars.LogicalCollectionAppointments
	filter := bson.M{
		m.field(col, "patient_id"): patientID,
		m.field(col, "date"):       bson.M{"$gte": fromDate},
		m.field(col, "status"): bson.M{"$in": []string{
			string(models.AppointmentPending),
			string(models.AppointmentConfirmed),
		}},
		m.field(col, "procedure_lines") + ".code": procedureCode,
	}
	count, err := r.appointments(m).CountDocuments(ctx, filter)
	if err != nil {
		return 0, exceptions.ErrMongoDBFindDocument(err)
	}
	return count, nil
}

func (r *BookingMongoRepository) SumGroupConsumptionForMonth(ctx context.Context, group *models.CupsGroup, monthStart, monthEnd string) (int, error) {
	m, err := mapperFor(ctx, r.tenants)
	if err != nil {
		return 0, err
	}

	col := constvars.LogicalCollectionAppointments
	linesField := m.field(col, "procedure_lines")

	lineMatch := bson.M{linesField + ".code": bson.M{"$in": group.Codes}}
	if group.PayerClass != "" {
		lineMatch[linesField+".payer_class"] = group.PayerClass
	}

	pipeline := []bson.M{
		{"$match": bson.M{
			m.field(col, "date"):   bson.M{"$gte": monthStart, "$lt": monthEnd},
			m.field(col, "status"): bson.M{"$ne": string(models.AppointmentCancelled)},
		}},
		{"$unwind": "$" + linesField},
		{"$match": lineMatch},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$" + linesField + ".quantity"},
		}},
	}

	cursor, err := r.appointments(m).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, exceptions.ErrMongoDBIterateDocuments(err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
