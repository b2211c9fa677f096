package reprocess

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/core/errlog"
	"github.com/vietddude/keapsync/internal/sync/loader"
)

// =============================================================================
// Fakes
// =============================================================================

type stubLoader struct {
	entityType domain.EntityType
}

func (s *stubLoader) EntityType() domain.EntityType { return s.entityType }
func (s *stubLoader) Paginated() bool               { return true }
func (s *stubLoader) SupportsSince() bool           { return false }
func (s *stubLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]loader.Item, *int, error) {
	return nil, nil, errors.New("not used")
}
func (s *stubLoader) LoadByID(ctx context.Context, id int64) error { return nil }

type fakeSource struct{}

func (fakeSource) Get(et domain.EntityType) (loader.EntityLoader, error) {
	return &stubLoader{entityType: et}, nil
}

type loadCall struct {
	entityType domain.EntityType
	id         int64
}

type fakeRunner struct {
	calls   []loadCall
	failIDs map[int64]error
}

func (f *fakeRunner) LoadOne(ctx context.Context, l loader.EntityLoader, id int64) error {
	f.calls = append(f.calls, loadCall{l.EntityType(), id})
	if err, ok := f.failIDs[id]; ok {
		return err
	}
	return nil
}

// =============================================================================
// Dependency extraction
// =============================================================================

func TestExtractMissingDependency(t *testing.T) {
	detail := `Key (lead_affiliate_id)=(77) is not present in table "affiliates"`

	tests := []struct {
		name   string
		rec    errlog.Record
		wantET domain.EntityType
		wantID int64
		ok     bool
	}{
		{
			name:   "detail in stack trace",
			rec:    errlog.Record{StackTrace: detail},
			wantET: domain.EntityAffiliates,
			wantID: 77,
			ok:     true,
		},
		{
			name:   "detail in error message",
			rec:    errlog.Record{ErrorMessage: "insert failed: " + detail},
			wantET: domain.EntityAffiliates,
			wantID: 77,
			ok:     true,
		},
		{
			name: "stack trace wins over message",
			rec: errlog.Record{
				StackTrace:   `Key (contact_id)=(5) is not present in table "contacts"`,
				ErrorMessage: detail,
			},
			wantET: domain.EntityContacts,
			wantID: 5,
			ok:     true,
		},
		{
			name: "no detail",
			rec:  errlog.Record{ErrorMessage: "connection refused"},
		},
		{
			name: "unmapped table",
			rec:  errlog.Record{StackTrace: `Key (x_id)=(3) is not present in table "audit_log"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			et, id, ok := extractMissingDependency(tt.rec)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (et != tt.wantET || id != tt.wantID) {
				t.Errorf("got %s/%d, want %s/%d", et, id, tt.wantET, tt.wantID)
			}
		})
	}
}

// =============================================================================
// Run
// =============================================================================

func newTestLedger(t *testing.T) *errlog.Ledger {
	t.Helper()
	return errlog.NewLedger(t.TempDir())
}

func TestRunBackfillsDependenciesBeforeReplay(t *testing.T) {
	ledger := newTestLedger(t)
	ledger.LogErrorWithStack(domain.EntityOrders, 1001, "ForeignKeyViolation", "insert failed",
		nil, `Key (lead_affiliate_id)=(77) is not present in table "affiliates"`)
	ledger.LogErrorWithStack(domain.EntityOrders, 1002, "IntegrityError", "insert failed",
		nil, `Key (contact_id)=(5) is not present in table "contacts"`)

	runner := &fakeRunner{}
	rp := New(ledger, fakeSource{}, runner)

	stats, err := rp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Backfill in dependency order (contacts before affiliates), then replay
	// the failed orders.
	want := []loadCall{
		{domain.EntityContacts, 5},
		{domain.EntityAffiliates, 77},
		{domain.EntityOrders, 1001},
		{domain.EntityOrders, 1002},
	}
	if len(runner.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", runner.calls, want)
	}
	for i := range want {
		if runner.calls[i] != want[i] {
			t.Errorf("call[%d] = %v, want %v", i, runner.calls[i], want[i])
		}
	}

	if stats.TotalErrors != 2 || stats.ProcessedErrors != 2 || stats.SuccessfulReprocesses != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.MissingDependencies[domain.EntityAffiliates]) != 1 {
		t.Errorf("missing deps = %v", stats.MissingDependencies)
	}
}

func TestRunSkipsNonReplayableErrors(t *testing.T) {
	ledger := newTestLedger(t)
	ledger.LogError(domain.EntityContacts, 1, "ValidationError", "bad payload", nil)
	ledger.LogError(domain.EntityContacts, 2, "AuthError", "bad key", nil)

	runner := &fakeRunner{}
	rp := New(ledger, fakeSource{}, runner)

	stats, err := rp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.TotalErrors != 2 || stats.ProcessedErrors != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(runner.calls) != 0 {
		t.Errorf("calls = %v, want none", runner.calls)
	}
}

func TestRunDedupesMissingDependencies(t *testing.T) {
	ledger := newTestLedger(t)
	detail := `Key (lead_affiliate_id)=(77) is not present in table "affiliates"`
	ledger.LogErrorWithStack(domain.EntityOrders, 1001, "ForeignKeyViolation", "insert failed", nil, detail)
	ledger.LogErrorWithStack(domain.EntityOrders, 1002, "ForeignKeyViolation", "insert failed", nil, detail)

	runner := &fakeRunner{}
	rp := New(ledger, fakeSource{}, runner)

	stats, err := rp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := stats.MissingDependencies[domain.EntityAffiliates]; len(got) != 1 || got[0] != 77 {
		t.Errorf("missing affiliates = %v, want [77]", got)
	}

	backfills := 0
	for _, c := range runner.calls {
		if c.entityType == domain.EntityAffiliates {
			backfills++
		}
	}
	if backfills != 1 {
		t.Errorf("affiliate 77 backfilled %d times, want once", backfills)
	}
}

func TestRunCountsReplayFailures(t *testing.T) {
	ledger := newTestLedger(t)
	ledger.LogErrorWithStack(domain.EntityOrders, 1001, "ForeignKeyViolation", "insert failed",
		nil, `Key (contact_id)=(5) is not present in table "contacts"`)
	ledger.LogErrorWithStack(domain.EntityOrders, 1002, "ForeignKeyViolation", "insert failed",
		nil, `Key (contact_id)=(6) is not present in table "contacts"`)

	runner := &fakeRunner{failIDs: map[int64]error{1002: errors.New("still broken")}}
	rp := New(ledger, fakeSource{}, runner)

	stats, err := rp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.SuccessfulReprocesses != 1 || stats.FailedReprocesses != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ledger := newTestLedger(t)
	ledger.LogErrorWithStack(domain.EntityOrders, 1001, "ForeignKeyViolation", "insert failed",
		nil, `Key (contact_id)=(5) is not present in table "contacts"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	rp := New(ledger, fakeSource{}, runner)

	if _, err := rp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("calls = %v, want none", runner.calls)
	}
}
