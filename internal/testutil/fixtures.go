package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user record with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	id := uuid.NewString()
	u := models.User{
		ID:        id,
		UID:       id,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: models.NewTimestamp(time.Now().UTC()),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateDoctor inserts a doctor user.
func (f *Fixtures) CreateDoctor(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleDoctor)
}

// CreateReceptionist inserts a receptionist user.
func (f *Fixtures) CreateReceptionist(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleReceptionist)
}

// CreatePatient inserts a patient record.
func (f *Fixtures) CreatePatient(ctx context.Context, name, gender, contact string) models.Patient {
	f.t.Helper()

	p := models.Patient{
		ID:        uuid.NewString(),
		Name:      name,
		Age:       30,
		Gender:    gender,
		Contact:   models.Contact(contact),
		CreatedAt: models.NewTimestamp(time.Now().UTC()),
	}
	if _, err := f.db.Collection("patients").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test patient: %v", err)
	}
	return p
}

// CreateAppointment inserts an appointment between patient and doctor.
func (f *Fixtures) CreateAppointment(ctx context.Context, patientID, doctorID string, when time.Time, status string) models.Appointment {
	f.t.Helper()

	a := models.Appointment{
		ID:        uuid.NewString(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      models.NewTimestamp(when),
		Status:    status,
	}
	if _, err := f.db.Collection("appointments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test appointment: %v", err)
	}
	return a
}

// CreatePrescription inserts a prescription written by doctorID.
func (f *Fixtures) CreatePrescription(ctx context.Context, patientID, doctorID, content string, when time.Time) models.Prescription {
	f.t.Helper()

	p := models.Prescription{
		ID:        uuid.NewString(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Content:   content,
		CreatedAt: models.NewTimestamp(when),
	}
	if _, err := f.db.Collection("prescriptions").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test prescription: %v", err)
	}
	return p
}
