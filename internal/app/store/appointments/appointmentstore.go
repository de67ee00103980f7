package appointmentstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no appointment matches.
	ErrNotFound  = errors.New("appointment not found")
	errBadStatus = errors.New(`status must be "Pending"|"Confirmed"|"Completed"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("appointments")}
}

// byID fixes the order of equal dates; the date order itself is applied
// after decoding (see models.SortNewestFirst).
var byID = bson.D{{Key: "_id", Value: 1}}

// ListAll returns every appointment, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.find(ctx, bson.M{})
}

// ListByDoctor returns the doctor's appointments, newest first.
func (s *Store) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return s.find(ctx, bson.M{"doctorId": doctorID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(byID))
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Appointment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	models.SortNewestFirst(out, func(a models.Appointment) models.Timestamp { return a.Date })
	return out, nil
}

// UpdateStatus sets the status of one of doctorID's appointments.
// Appointments belonging to another doctor report ErrNotFound.
func (s *Store) UpdateStatus(ctx context.Context, id, doctorID, status string) error {
	if !models.IsValidStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "doctorId": doctorID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
