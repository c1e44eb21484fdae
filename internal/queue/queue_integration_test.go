package queue

import (
	"context"
	"os"
	"testing"
)

// openTestQueue connects to the database named by TEST_DATABASE_URL, or
// skips the test when none is configured.
func openTestQueue(t *testing.T) *Queue {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	q, err := Open(context.Background(), url)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_, _ = q.db.Exec(`DELETE FROM jobs`)
		q.Close()
	})
	return q
}

func TestEnqueueSuppressesDuplicates(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	_, created, err := q.Enqueue(ctx, "Handbook", "pt")
	if err != nil || !created {
		t.Fatalf("first enqueue: created=%v err=%v", created, err)
	}
	_, created, err = q.Enqueue(ctx, "Handbook", "pt")
	if err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if created {
		t.Error("duplicate enqueue was not suppressed")
	}

	// A different language is a different job.
	_, created, err = q.Enqueue(ctx, "Handbook", "fr")
	if err != nil || !created {
		t.Errorf("enqueue other lang: created=%v err=%v", created, err)
	}
}

func TestClaimAndComplete(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	id, _, err := q.Enqueue(ctx, "Handbook", "sr")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	job, err := q.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if job == nil || job.ID != id || job.Document != "Handbook" || job.Lang != "sr" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.Status != StatusRunning {
		t.Errorf("claimed job status = %q", job.Status)
	}

	// A running job is not claimable again.
	other, err := q.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if other != nil {
		t.Errorf("claimed a running job: %+v", other)
	}

	if err := q.MarkDone(ctx, job.ID); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	counts, err := q.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[StatusDone] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestMarkErrorRequeuesUntilLimit(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	id, _, err := q.Enqueue(ctx, "Handbook", "de")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	for attempt := 1; attempt <= 2; attempt++ {
		job, err := q.Next(ctx)
		if err != nil || job == nil {
			t.Fatalf("Next attempt %d: job=%v err=%v", attempt, job, err)
		}
		if err := q.MarkError(ctx, job.ID, "provider unavailable", 2); err != nil {
			t.Fatalf("MarkError: %v", err)
		}
	}

	// Two failures with maxRetries=2 end in the error state.
	job, err := q.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if job != nil {
		t.Errorf("exhausted job was requeued: %+v", job)
	}
	counts, _ := q.Counts(ctx)
	if counts[StatusError] != 1 {
		t.Errorf("counts = %v, want one error job (id %s)", counts, id)
	}
}

func TestPruneLangs(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()

	_, _, _ = q.Enqueue(ctx, "Handbook", "pt")
	_, _, _ = q.Enqueue(ctx, "Handbook", "xx")
	_, _, _ = q.Enqueue(ctx, "Other", "yy")

	n, err := q.PruneLangs(ctx, []string{"pt", "fr"})
	if err != nil {
		t.Fatalf("PruneLangs: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d jobs, want 2", n)
	}

	if _, err := q.PruneLangs(ctx, nil); err == nil {
		t.Error("empty keep set did not error")
	}
}
