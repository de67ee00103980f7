package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/indexes"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/clinicdash/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_Create_NormalizesAndAssignsID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Name:  "  Dr. Asha Rao ",
		Email: " Asha@Clinic.Example ",
		Role:  models.RoleDoctor,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == "" || created.UID != created.ID {
		t.Errorf("expected ID assigned and mirrored to UID, got ID=%q UID=%q", created.ID, created.UID)
	}
	if created.Name != "Dr. Asha Rao" {
		t.Errorf("Name: got %q", created.Name)
	}
	if created.Email != "asha@clinic.example" {
		t.Errorf("Email: got %q", created.Email)
	}
	if !created.CreatedAt.Valid() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_RejectsUnknownRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com", Role: "doctor"}); err == nil {
		t.Fatal("expected lowercase role to be rejected")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{Name: "A", Email: "dup@example.com", Role: models.RoleDoctor}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "B", Email: "DUP@example.com", Role: models.RoleReceptionist})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_ListByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateDoctor(ctx, "Zed", "zed@example.com")
	fx.CreateDoctor(ctx, "Amy", "amy@example.com")
	fx.CreateReceptionist(ctx, "Rita", "rita@example.com")

	doctors, err := store.ListByRole(ctx, models.RoleDoctor)
	if err != nil {
		t.Fatalf("ListByRole failed: %v", err)
	}
	if len(doctors) != 2 {
		t.Fatalf("expected 2 doctors, got %d", len(doctors))
	}
	if doctors[0].Name != "Amy" || doctors[1].Name != "Zed" {
		t.Errorf("expected doctors ordered by name, got %q, %q", doctors[0].Name, doctors[1].Name)
	}

	admins, err := store.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		t.Fatalf("ListByRole failed: %v", err)
	}
	if admins == nil || len(admins) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", admins)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDoctor(ctx, "Amy", "amy@example.com")
	r := fx.CreateReceptionist(ctx, "Rita", "rita@example.com")
	fx.CreateDoctor(ctx, "Zed", "zed@example.com")

	got, err := store.GetByIDs(ctx, []string{d.ID, r.ID, "missing"})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
}

func TestStore_Delete_OnlyMatchingRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc := fx.CreateDoctor(ctx, "Doc", "doc@example.com")

	if err := store.Delete(ctx, doc.ID, models.RoleReceptionist); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for mismatched role, got %v", err)
	}
	if err := store.Delete(ctx, doc.ID, models.RoleDoctor); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, doc.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
}

func TestStore_UpsertRole_MergesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing, err := store.Create(ctx, models.User{
		Name:         "Pat Patient",
		Email:        "pat@example.com",
		Role:         models.RolePatient,
		PasswordHash: "hash-stays",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.UpsertRole(ctx, userstore.RoleChange{ID: existing.ID, Name: "Pat Patient", Role: models.RoleDoctor})
	if err != nil {
		t.Fatalf("UpsertRole failed: %v", err)
	}

	got, err := store.GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != models.RoleDoctor {
		t.Errorf("Role: got %q, want Doctor", got.Role)
	}
	if got.PasswordHash != "hash-stays" {
		t.Errorf("expected password hash preserved, got %q", got.PasswordHash)
	}
	if got.Email != "pat@example.com" {
		t.Errorf("expected email preserved when blank in change, got %q", got.Email)
	}
	if got.SubscriptionPlan != models.DefaultSubscriptionPlan {
		t.Errorf("SubscriptionPlan: got %q", got.SubscriptionPlan)
	}
}

func TestStore_UpsertRole_CreatesMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.UpsertRole(ctx, userstore.RoleChange{ID: "patient-1", Name: "New Staff", Email: "new@example.com", Role: models.RoleReceptionist})
	if err != nil {
		t.Fatalf("UpsertRole failed: %v", err)
	}

	var raw bson.M
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": "patient-1"}).Decode(&raw); err != nil {
		t.Fatalf("find upserted: %v", err)
	}
	if raw["uid"] != "patient-1" || raw["role"] != models.RoleReceptionist {
		t.Errorf("unexpected upserted doc: %v", raw)
	}
	if _, ok := raw["createdAt"]; !ok {
		t.Error("expected createdAt set on insert")
	}
}
