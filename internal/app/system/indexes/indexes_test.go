package indexes_test

import (
	"testing"

	"github.com/dalemusser/clinicdash/internal/app/system/indexes"
	"github.com/dalemusser/clinicdash/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":         {"uniq_users_email", "idx_users_role_name_id"},
		"patients":      {"idx_patients_name_id"},
		"appointments":  {"idx_appts_date_id", "idx_appts_doctor_date_id"},
		"prescriptions": {"idx_rx_doctor_created_id"},
		"audit_events":  {"idx_audit_ts", "idx_audit_user_ts", "idx_audit_cat_type_ts"},
	}
	for coll, expected := range want {
		got := indexNames(t, db, coll)
		for _, name := range expected {
			if !got[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

func TestEnsureAll_EmptyEmailsDoNotCollide(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	users := db.Collection("users")
	for _, id := range []string{"a", "b"} {
		if _, err := users.InsertOne(ctx, bson.M{"_id": id, "name": id, "role": "Patient"}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
}
