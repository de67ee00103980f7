package prescriptionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errMissingFields = errors.New("prescription needs patient, doctor and content")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("prescriptions")}
}

// ListByDoctor returns the prescriptions doctorID wrote, newest first.
func (s *Store) ListByDoctor(ctx context.Context, doctorID string) ([]models.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"doctorId": doctorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find prescriptions: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Prescription, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode prescriptions: %w", err)
	}
	models.SortNewestFirst(out, func(p models.Prescription) models.Timestamp { return p.CreatedAt })
	return out, nil
}

// Create inserts p with a fresh ID and the current time.
func (s *Store) Create(ctx context.Context, p models.Prescription) (models.Prescription, error) {
	p.Content = strings.TrimSpace(p.Content)
	if p.PatientID == "" || p.DoctorID == "" || p.Content == "" {
		return models.Prescription{}, errMissingFields
	}
	p.ID = uuid.NewString()
	p.CreatedAt = models.NewTimestamp(time.Now().UTC())

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Prescription{}, err
	}
	return p, nil
}
