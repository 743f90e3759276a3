package quantummeadow

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.CloseDB() })
	if err := db.CreateTables(); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

// TestHistoryRecordAndList verifies newest-first ordering and limits.
func TestHistoryRecordAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []GenerationRecord{
		{ID: "g1", StartedAt: base, FinishedAt: base.Add(time.Second), Model: DefaultModel, Outcome: OutcomeGenerated, QuestionCount: 5},
		{ID: "g2", StartedAt: base.Add(time.Minute), FinishedAt: base.Add(time.Minute + time.Second), Model: DefaultModel, Outcome: OutcomeFallback, Cause: CauseService, QuestionCount: 2, Error: "service error: boom"},
		{ID: "g3", StartedAt: base.Add(2 * time.Minute), FinishedAt: base.Add(2 * time.Minute), Model: DefaultModel, Outcome: OutcomeFallback, Cause: CauseMissingCredential, QuestionCount: 2},
	}
	for _, rec := range records {
		if err := db.RecordGeneration(ctx, rec); err != nil {
			t.Fatalf("record %s: %v", rec.ID, err)
		}
	}

	all, err := db.GetGenerations(ctx, 0)
	if err != nil {
		t.Fatalf("get generations: %v", err)
	}
	if len(all) != 3 || all[0].ID != "g3" || all[2].ID != "g1" {
		t.Fatalf("unexpected order %+v", all)
	}
	if all[1].Cause != CauseService || all[1].Error != "service error: boom" {
		t.Fatalf("unexpected fallback row %+v", all[1])
	}
	if all[2].Cause != "" || all[2].QuestionCount != 5 {
		t.Fatalf("unexpected generated row %+v", all[2])
	}

	limited, err := db.GetGenerations(ctx, 2)
	if err != nil {
		t.Fatalf("get limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "g3" {
		t.Fatalf("unexpected limited rows %+v", limited)
	}
}

// TestHistoryCountOutcomes verifies per-outcome counts.
func TestHistoryCountOutcomes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	outcomes := []string{OutcomeGenerated, OutcomeFallback, OutcomeFallback}
	for i, outcome := range outcomes {
		rec := GenerationRecord{
			ID:         string(rune('a' + i)),
			StartedAt:  now.Add(time.Duration(i) * time.Second),
			FinishedAt: now.Add(time.Duration(i) * time.Second),
			Model:      DefaultModel,
			Outcome:    outcome,
		}
		if err := db.RecordGeneration(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	counts, err := db.CountOutcomes(ctx)
	if err != nil {
		t.Fatalf("count outcomes: %v", err)
	}
	if counts[OutcomeGenerated] != 1 || counts[OutcomeFallback] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

// TestHistoryRecordsFromSource verifies the source writes through to sqlite.
func TestHistoryRecordsFromSource(t *testing.T) {
	db := openTestDB(t)
	cfg := DefaultSourceConfig()
	source := NewQuestionSourceWithClient(cfg, &fakeCompleter{})
	source.SetRecorder(db)

	result := source.FetchQuestions(context.Background())
	if !result.Fallback {
		t.Fatalf("expected fallback without api key")
	}

	rows, err := db.GetGenerations(context.Background(), 10)
	if err != nil {
		t.Fatalf("get generations: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != result.ID || rows[0].Cause != CauseMissingCredential {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
