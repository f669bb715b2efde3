package backup

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billingpro/internal/domain"
	"billingpro/internal/store"
	"billingpro/internal/store/memkv"
)

func newCoordinator(t *testing.T) (*store.Store, *Coordinator) {
	t.Helper()
	st := store.New(memkv.New())
	c := NewCoordinator(st, zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC) })
	return st, c
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, c := newCoordinator(t)

	require.NoError(t, st.Products.Create(ctx, domain.Product{
		ID: "p1", Code: "PRD-0001", Name: "Rice", Price: decimal.NewFromInt(10), Stock: 4,
	}))
	require.NoError(t, st.Customers.Create(ctx, domain.Customer{
		ID: "CUST-0001", Name: "Asha", Phone: "555-0101",
	}))

	snap, raw, err := c.CreateSnapshot(ctx, domain.SnapshotTypeFull, FullOptions)
	require.NoError(t, err)
	assert.Equal(t, domain.SnapshotVersion, snap.Metadata.Version)

	parsed, err := ParseSnapshot(raw)
	require.NoError(t, err)
	require.Len(t, parsed.Data.Products, 1)
	assert.Equal(t, "PRD-0001", parsed.Data.Products[0].Code)
	require.Len(t, parsed.Data.Customers, 1)
}

func TestParseSnapshotRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"not json",
		`{"metadata":{}}`,
		`{"foo":1}`,
		`{"metadata":{"version":"2.0"}}`,
	} {
		_, err := ParseSnapshot([]byte(raw))
		assert.True(t, errors.Is(err, domain.ErrParse), "input %q", raw)
	}
}

func TestParseSnapshotToleratesUnknownFields(t *testing.T) {
	// Exports from newer builds may carry fields this build does not know.
	raw := []byte(`{
		"metadata": {"version": "1.2", "type": "full", "compression": "none"},
		"data": {"products": [{"id": "p1", "code": "PRD-0001", "shelf": "A3"}]},
		"checksum": "abc123"
	}`)
	snap, err := ParseSnapshot(raw)
	require.NoError(t, err)
	require.Len(t, snap.Data.Products, 1)
	assert.Equal(t, "PRD-0001", snap.Data.Products[0].Code)
}

func TestRestoreReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	st, c := newCoordinator(t)

	require.NoError(t, st.Products.Create(ctx, domain.Product{ID: "p1", Code: "PRD-0001", Name: "Old"}))

	snap := domain.Snapshot{
		Metadata: domain.SnapshotMetadata{Version: domain.SnapshotVersion},
		Data: domain.SnapshotData{
			Products: []domain.Product{{ID: "p2", Code: "PRD-0002", Name: "New"}},
		},
	}
	require.NoError(t, c.Restore(ctx, snap, RestoreReplace))

	products, err := st.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)
}

func TestRestoreMergeReconciles(t *testing.T) {
	ctx := context.Background()
	st, c := newCoordinator(t)

	require.NoError(t, st.Customers.Create(ctx, domain.Customer{
		ID: "CUST-0001", Name: "Asha", Phone: "555-0101", Notes: "long-time buyer",
	}))

	snap := domain.Snapshot{
		Metadata: domain.SnapshotMetadata{Version: domain.SnapshotVersion},
		Data: domain.SnapshotData{
			Customers: []domain.Customer{
				{ID: "other_id", Name: "Asha K", Phone: "555-0101"},
				{ID: "CUST-0009", Name: "Ben", Phone: "555-0202"},
			},
		},
	}
	require.NoError(t, c.Restore(ctx, snap, RestoreMerge))

	customers, err := st.Customers.List(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "CUST-0001", customers[0].ID, "phone match keeps the existing id")
	assert.Equal(t, "Asha K", customers[0].Name)
}

func TestRestoreMergeKeepsLocalUsers(t *testing.T) {
	ctx := context.Background()
	st, c := newCoordinator(t)

	require.NoError(t, st.Users.Create(ctx, domain.UserAccount{Username: "admin", Role: domain.RoleAdmin, Active: true}))
	require.NoError(t, st.Users.Create(ctx, domain.UserAccount{Username: "asha", Role: domain.RoleSalesman, Active: true}))

	snap := domain.Snapshot{
		Metadata: domain.SnapshotMetadata{Version: domain.SnapshotVersion},
		Data: domain.SnapshotData{
			Users: []domain.UserAccount{
				{Username: "Asha", Role: domain.RoleAdmin, Active: true},
				{Username: "ben", Role: domain.RoleSalesman, Active: true},
			},
		},
	}
	require.NoError(t, c.Restore(ctx, snap, RestoreMerge))

	users, err := st.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3, "local accounts survive a merge restore")

	admin, err := st.Users.Get(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	asha, err := st.Users.Get(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, asha.Role, "matched username takes the incoming record")
}

func TestRestoreLeavesAbsentCollectionsAlone(t *testing.T) {
	ctx := context.Background()
	st, c := newCoordinator(t)

	require.NoError(t, st.Payments.Create(ctx, domain.Payment{ID: "pay_1", CustomerID: "CUST-0001", Amount: decimal.NewFromInt(5)}))

	snap := domain.Snapshot{
		Metadata: domain.SnapshotMetadata{Version: domain.SnapshotVersion},
		Data: domain.SnapshotData{
			Products: []domain.Product{{ID: "p1", Code: "PRD-0001"}},
		},
	}
	require.NoError(t, c.Restore(ctx, snap, RestoreReplace))

	payments, err := st.Payments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestHistoryCappedMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	_, c := newCoordinator(t)

	base := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	for i := 0; i < historyCap+3; i++ {
		ts := base.AddDate(0, 0, i)
		c.now = func() time.Time { return ts }
		snap, raw, err := c.CreateSnapshot(ctx, domain.SnapshotTypeScheduled, FullOptions)
		require.NoError(t, err)
		require.NoError(t, c.RecordResult(ctx, snap, len(raw), "ok"))
	}

	entries, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, historyCap)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].Timestamp.After(entries[i].Timestamp),
			"entry %d should be newer than entry %d", i-1, i)
	}
}

func TestNextScheduledTime(t *testing.T) {
	cases := []struct {
		after     time.Time
		frequency string
		timeOfDay string
		want      time.Time
	}{
		// Daily, before and after today's slot.
		{time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC), domain.FrequencyDaily, "02:00", time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)},
		{time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC), domain.FrequencyDaily, "02:00", time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC)},
		// Weekly.
		{time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC), domain.FrequencyWeekly, "02:00", time.Date(2026, 4, 8, 2, 0, 0, 0, time.UTC)},
		// Monthly with day-of-month clamping: Jan 31 anchors to Feb 28.
		{time.Date(2026, 1, 31, 3, 0, 0, 0, time.UTC), domain.FrequencyMonthly, "02:00", time.Date(2026, 2, 28, 2, 0, 0, 0, time.UTC)},
		// December rolls into January.
		{time.Date(2026, 12, 15, 3, 0, 0, 0, time.UTC), domain.FrequencyMonthly, "02:00", time.Date(2027, 1, 15, 2, 0, 0, 0, time.UTC)},
		// Bad time of day falls back to 02:00.
		{time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC), domain.FrequencyDaily, "25:99", time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC)},
	}
	for i, tc := range cases {
		got := NextScheduledTime(tc.after, tc.frequency, tc.timeOfDay)
		assert.True(t, got.Equal(tc.want), "case %d: got %s want %s", i, got, tc.want)
		assert.True(t, got.After(tc.after), "case %d: result must be after the reference", i)
	}
}

func TestSchedulerReplacesPendingRun(t *testing.T) {
	fired := make(chan struct{}, 2)
	s := NewScheduler(func() { fired <- struct{}{} })

	s.ScheduleAt(time.Now().Add(time.Hour))
	s.ScheduleAt(time.Now().Add(10 * time.Millisecond))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not fire")
	}
	select {
	case <-fired:
		t.Fatal("replaced timer fired too")
	case <-time.After(50 * time.Millisecond):
	}
	s.Stop()
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprintf("billing-backup-%s.json", "2026-04-01"), FileName(ts))
}
