package patientstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the addressed patient does not exist.
var ErrNotFound = errors.New("patient not found")

// Store provides read access to the patients collection. Patients are
// registered by the reception desk; the dashboards only read them.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("patients")}
}

// List returns every patient, ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Patient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find patients: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Patient, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode patients: %w", err)
	}
	return out, nil
}

// GetByID loads a single patient.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	var p models.Patient
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs loads the patients with the given identifiers. Unknown ids are
// skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]models.Patient, error) {
	out := make([]models.Patient, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find patients by id: %w", err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode patients by id: %w", err)
	}
	return out, nil
}
