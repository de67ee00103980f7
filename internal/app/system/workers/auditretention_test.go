package workers

import (
	"testing"
	"time"

	"github.com/dalemusser/clinicdash/internal/app/store/audit"
	"github.com/dalemusser/clinicdash/internal/testutil"
	"go.uber.org/zap"
)

func TestAuditRetention_SweepDeletesOldEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, age := range []time.Duration{48 * time.Hour, 2 * time.Hour} {
		if err := events.Log(ctx, audit.Event{
			Timestamp: now.Add(-age),
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	w := NewAuditRetention(events, zap.NewNop(), time.Hour, 24*time.Hour)
	w.now = func() time.Time { return now }
	w.sweep()

	left, err := events.CountByFilter(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("CountByFilter: %v", err)
	}
	if left != 1 {
		t.Errorf("remaining events: got %d, want 1", left)
	}
}

func TestAuditRetention_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)

	w := NewAuditRetention(audit.New(db), zap.NewNop(), time.Hour, 24*time.Hour)
	w.Start()
	w.Stop()
	w.Stop()
}
