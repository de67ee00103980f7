package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/clinicdash/internal/app/system/normalize"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when a write would give two users the same email.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when the addressed user does not exist.
	ErrNotFound = errors.New("user not found")
	errBadRole  = errors.New(`role must be "Admin"|"Doctor"|"Receptionist"|"Patient"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// ListByRole returns every user carrying role, ordered by name.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users with role %s: %w", role, err)
	}
	defer cur.Close(ctx)

	out := make([]models.User, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users with role %s: %w", role, err)
	}
	return out, nil
}

// GetByID loads a user by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads the users with the given identifiers. Unknown ids are
// skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	out := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users by id: %w", err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users by id: %w", err)
	}
	return out, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields. An empty ID gets a
// fresh UUID; CreatedAt defaults to now.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.UID = u.ID
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)

	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if !u.CreatedAt.Valid() {
		u.CreatedAt = models.NewTimestamp(time.Now().UTC())
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Delete removes the user record with the given id and role. Only the
// record is removed; credentials held anywhere else are untouched.
func (s *Store) Delete(ctx context.Context, id, role string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "role": role})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RoleChange carries the fields written when a record is given a new role.
type RoleChange struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// UpsertRole writes the role change into users/{ID}, merging with any
// existing record: fields not named here (password hash, creation time) are
// left as they are.
func (s *Store) UpsertRole(ctx context.Context, rc RoleChange) error {
	if !models.IsValidRole(rc.Role) {
		return errBadRole
	}

	set := bson.M{
		"uid":              rc.ID,
		"role":             rc.Role,
		"subscriptionPlan": models.DefaultSubscriptionPlan,
	}
	// Blank values would erase what an existing record already has.
	if name := normalize.Name(rc.Name); name != "" {
		set["name"] = name
	}
	if email := normalize.Email(rc.Email); email != "" {
		set["email"] = email
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": models.NewTimestamp(time.Now().UTC())},
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": rc.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}
