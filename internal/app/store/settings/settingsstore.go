// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the clinic_settings collection, which holds a
// single document keyed by models.ClinicSettingsID.
type Store struct {
	c *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clinic_settings")}
}

// Get returns the clinic settings. When nothing has been saved yet it
// returns defaults (default name, no stored fee).
func (s *Store) Get(ctx context.Context) (models.ClinicSettings, error) {
	var settings models.ClinicSettings
	err := s.c.FindOne(ctx, bson.M{"_id": models.ClinicSettingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ClinicSettings{
			ID:         models.ClinicSettingsID,
			ClinicName: models.DefaultClinicName,
		}, nil
	}
	if err != nil {
		return models.ClinicSettings{}, err
	}
	if settings.ClinicName == "" {
		settings.ClinicName = models.DefaultClinicName
	}
	return settings, nil
}

// Save upserts the settings document.
func (s *Store) Save(ctx context.Context, settings models.ClinicSettings) error {
	now := time.Now().UTC()

	set := bson.M{
		"clinicName":    settings.ClinicName,
		"updatedAt":     now,
		"updatedById":   settings.UpdatedByID,
		"updatedByName": settings.UpdatedByName,
	}
	update := bson.M{"$set": set}
	if settings.ConsultationFee != nil {
		set["consultationFee"] = *settings.ConsultationFee
	} else {
		update["$unset"] = bson.M{"consultationFee": ""}
	}

	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": models.ClinicSettingsID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}
