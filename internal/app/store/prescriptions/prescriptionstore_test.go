package prescriptionstore_test

import (
	"testing"
	"time"

	prescriptionstore "github.com/dalemusser/clinicdash/internal/app/store/prescriptions"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/clinicdash/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := prescriptionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Prescription{PatientID: "p1", DoctorID: "d1", Content: "  Paracetamol 500mg  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.ID == "" {
		t.Error("ID should be assigned")
	}
	if p.Content != "Paracetamol 500mg" {
		t.Errorf("Content: got %q", p.Content)
	}
	if !p.CreatedAt.Valid() {
		t.Error("CreatedAt should be set")
	}
}

func TestStore_Create_MissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := prescriptionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Prescription{PatientID: "p1", DoctorID: "d1", Content: "   "}); err == nil {
		t.Error("expected error for blank content")
	}
	if _, err := store.Create(ctx, models.Prescription{DoctorID: "d1", Content: "x"}); err == nil {
		t.Error("expected error for missing patient")
	}
}

func TestStore_ListByDoctor_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := prescriptionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	older := fx.CreatePrescription(ctx, "p1", "d1", "older", now.Add(-time.Hour))
	newer := fx.CreatePrescription(ctx, "p2", "d1", "newer", now)
	fx.CreatePrescription(ctx, "p3", "d2", "not mine", now)

	got, err := store.ListByDoctor(ctx, "d1")
	if err != nil {
		t.Fatalf("ListByDoctor failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("order: got %s, %s", got[0].ID, got[1].ID)
	}
}
