package loader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vietddude/keapsync/internal/core/checkpoint"
	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/core/errlog"
	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/sync/retry"
)

// =============================================================================
// Fake entity loader
// =============================================================================

type fakePage struct {
	items []Item
	next  *int
	err   error
}

type fakeLoader struct {
	entityType    domain.EntityType
	paginated     bool
	supportsSince bool

	// pages keyed by offset
	pages map[int]fakePage

	fetchCalls  []int
	fetchExtras []map[string]string
	loadedByID  []int64
}

func (f *fakeLoader) EntityType() domain.EntityType { return f.entityType }
func (f *fakeLoader) Paginated() bool               { return f.paginated }
func (f *fakeLoader) SupportsSince() bool           { return f.supportsSince }

func (f *fakeLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	f.fetchCalls = append(f.fetchCalls, offset)
	f.fetchExtras = append(f.fetchExtras, extra)
	p := f.pages[offset]
	return p.items, p.next, p.err
}

func (f *fakeLoader) LoadByID(ctx context.Context, id int64) error {
	f.loadedByID = append(f.loadedByID, id)
	return nil
}

func okItem(id int64) Item {
	return Item{ID: id, Persist: func(ctx context.Context) error { return nil }}
}

func failItem(id int64, err error) Item {
	return Item{ID: id, Persist: func(ctx context.Context) error { return err }}
}

func intPtr(n int) *int { return &n }

func newTestRunner(t *testing.T) (*Runner, *checkpoint.Store, *errlog.Ledger) {
	t.Helper()
	cps := checkpoint.NewStore(filepath.Join(t.TempDir(), "progress.json"))
	ledger := errlog.NewLedger(t.TempDir())
	runner := NewRunner(Deps{
		Retry:       retry.NewPolicy(retry.Config{}),
		Ledger:      ledger,
		Checkpoints: cps,
		BatchSize:   50,
	})
	return runner, cps, ledger
}

// =============================================================================
// LoadAll
// =============================================================================

func TestLoadAllWalksPagesAndCompletes(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	l := &fakeLoader{
		entityType: domain.EntityContacts,
		paginated:  true,
		pages: map[int]fakePage{
			0:   {items: []Item{okItem(1), okItem(2)}, next: intPtr(50)},
			50:  {items: []Item{okItem(3)}, next: intPtr(100)},
			100: {items: nil, next: nil},
		},
	}

	result, err := runner.LoadAll(context.Background(), l, false)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if result.TotalRecords != 3 || result.SuccessCount != 3 || result.FailedCount != 0 {
		t.Errorf("result = %+v", result)
	}
	if cps.GetLastCompleted(domain.EntityContacts) == nil {
		t.Error("completion timestamp not stamped")
	}
	if got := cps.Get(domain.EntityContacts); got != 3 {
		t.Errorf("records processed = %d, want 3", got)
	}
}

func TestLoadAllStopsWhenNextMissing(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	l := &fakeLoader{
		entityType: domain.EntityTags,
		paginated:  true,
		pages: map[int]fakePage{
			0: {items: []Item{okItem(1)}, next: nil},
		},
	}

	result, err := runner.LoadAll(context.Background(), l, false)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if result.TotalRecords != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(l.fetchCalls) != 1 {
		t.Errorf("fetch calls = %v, want one page", l.fetchCalls)
	}
	if cps.GetLastCompleted(domain.EntityTags) == nil {
		t.Error("completion timestamp not stamped")
	}
}

func TestLoadAllResumesFromCheckpoint(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	if err := cps.Save(domain.EntityContacts, 100, 100, false); err != nil {
		t.Fatal(err)
	}

	l := &fakeLoader{
		entityType: domain.EntityContacts,
		paginated:  true,
		pages: map[int]fakePage{
			100: {items: nil, next: nil},
		},
	}

	if _, err := runner.LoadAll(context.Background(), l, false); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(l.fetchCalls) != 1 || l.fetchCalls[0] != 100 {
		t.Errorf("fetch calls = %v, want [100]", l.fetchCalls)
	}
}

func TestLoadAllIncrementalRestartsPagination(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	// Previous completed run left a checkpoint and a completion stamp.
	if err := cps.Save(domain.EntityContacts, 500, 500, true); err != nil {
		t.Fatal(err)
	}

	l := &fakeLoader{
		entityType:    domain.EntityContacts,
		paginated:     true,
		supportsSince: true,
		pages: map[int]fakePage{
			0: {items: nil, next: nil},
		},
	}

	if _, err := runner.LoadAll(context.Background(), l, true); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(l.fetchCalls) != 1 || l.fetchCalls[0] != 0 {
		t.Errorf("fetch calls = %v, want offset 0", l.fetchCalls)
	}
	if l.fetchExtras[0]["since"] == "" {
		t.Error("since filter missing on incremental load")
	}
}

func TestLoadAllUpdateWithoutHistoryStartsAtZero(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	// A prior interrupted run left an offset but no completion timestamp.
	if err := cps.Save(domain.EntityContacts, 100, 100, false); err != nil {
		t.Fatal(err)
	}

	l := &fakeLoader{
		entityType:    domain.EntityContacts,
		paginated:     true,
		supportsSince: true,
		pages: map[int]fakePage{
			0: {items: nil, next: nil},
		},
	}

	if _, err := runner.LoadAll(context.Background(), l, true); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	// Update restarts pagination even without a since filter to apply.
	if len(l.fetchCalls) != 1 || l.fetchCalls[0] != 0 {
		t.Errorf("fetch calls = %v, want offset 0", l.fetchCalls)
	}
	if len(l.fetchExtras[0]) != 0 {
		t.Errorf("extras = %v, want none", l.fetchExtras[0])
	}
}

func TestLoadAllUpdateWithoutSinceSupport(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	if err := cps.Save(domain.EntityProducts, 100, 100, true); err != nil {
		t.Fatal(err)
	}

	l := &fakeLoader{
		entityType: domain.EntityProducts,
		paginated:  true,
		pages: map[int]fakePage{
			100: {items: nil, next: nil},
		},
	}

	// Update requested but the type cannot filter: resume the full walk.
	if _, err := runner.LoadAll(context.Background(), l, true); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(l.fetchCalls) != 1 || l.fetchCalls[0] != 100 {
		t.Errorf("fetch calls = %v, want [100]", l.fetchCalls)
	}
	if len(l.fetchExtras[0]) != 0 {
		t.Errorf("extras = %v, want none", l.fetchExtras[0])
	}
}

func TestLoadAllIsolatesItemFailures(t *testing.T) {
	runner, cps, ledger := newTestRunner(t)
	itemErr := &keap.ValidationError{Message: "bad record"}
	l := &fakeLoader{
		entityType: domain.EntityOrders,
		paginated:  true,
		pages: map[int]fakePage{
			0: {items: []Item{okItem(1), failItem(2, itemErr), okItem(3)}, next: nil},
		},
	}

	result, err := runner.LoadAll(context.Background(), l, false)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Errorf("result = %+v", result)
	}
	// The run still completes and the failure lands in the ledger.
	if cps.GetLastCompleted(domain.EntityOrders) == nil {
		t.Error("run should complete despite the bad record")
	}
	recs := ledger.GetErrors(domain.EntityOrders)
	if len(recs) != 1 || recs[0].EntityID != 2 {
		t.Errorf("ledger records = %+v", recs)
	}
	if recs[0].ErrorType != "ValidationError" {
		t.Errorf("error type = %q", recs[0].ErrorType)
	}
}

func TestLoadAllQuotaExhaustionSkipsOnlyThatItem(t *testing.T) {
	runner, cps, ledger := newTestRunner(t)
	quota := &keap.QuotaExhaustedError{Message: "quota gone"}
	l := &fakeLoader{
		entityType: domain.EntityContacts,
		paginated:  true,
		pages: map[int]fakePage{
			0:  {items: []Item{okItem(1), failItem(2, quota), okItem(3)}, next: intPtr(50)},
			50: {items: nil, next: nil},
		},
	}

	result, err := runner.LoadAll(context.Background(), l, false)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	// The starved item fails, the other two still load, the run completes.
	if result.TotalRecords != 3 || result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Errorf("result = %+v", result)
	}
	if cps.GetLastCompleted(domain.EntityContacts) == nil {
		t.Error("run should complete despite the starved item")
	}
	recs := ledger.GetErrors(domain.EntityContacts)
	if len(recs) != 1 || recs[0].EntityID != 2 || recs[0].ErrorType != "QuotaExhaustedError" {
		t.Errorf("ledger records = %+v", recs)
	}
}

func TestLoadAllPageFailurePreservesCheckpoint(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	l := &fakeLoader{
		entityType: domain.EntityContacts,
		paginated:  true,
		pages: map[int]fakePage{
			0:  {items: []Item{okItem(1)}, next: intPtr(50)},
			50: {err: &keap.ValidationError{Message: "broken"}},
		},
	}

	_, err := runner.LoadAll(context.Background(), l, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	// The first page's checkpoint is intact for resumption.
	if got := cps.GetAPIOffset(domain.EntityContacts); got != 50 {
		t.Errorf("checkpoint offset = %d, want 50", got)
	}
	if cps.GetLastCompleted(domain.EntityContacts) != nil {
		t.Error("failed run must not be marked completed")
	}
}

func TestLoadAllUnpaginated(t *testing.T) {
	runner, cps, _ := newTestRunner(t)
	l := &fakeLoader{
		entityType: domain.EntityCustomFields,
		paginated:  false,
		pages: map[int]fakePage{
			0: {items: []Item{okItem(1), okItem(2)}},
		},
	}

	result, err := runner.LoadAll(context.Background(), l, false)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if result.TotalRecords != 2 || result.SuccessCount != 2 {
		t.Errorf("result = %+v", result)
	}
	if cps.GetLastCompleted(domain.EntityCustomFields) == nil {
		t.Error("completion timestamp not stamped")
	}
}

// =============================================================================
// LoadOne
// =============================================================================

func TestLoadOneRecordsFailure(t *testing.T) {
	runner, _, ledger := newTestRunner(t)
	l := &failingByIDLoader{err: &keap.NotFoundError{Message: "gone"}}

	err := runner.LoadOne(context.Background(), l, 42)
	if err == nil {
		t.Fatal("expected an error")
	}
	recs := ledger.GetErrors(domain.EntityContacts)
	if len(recs) != 1 || recs[0].EntityID != 42 || recs[0].ErrorType != "NotFoundError" {
		t.Errorf("ledger records = %+v", recs)
	}
}

type failingByIDLoader struct {
	err error
}

func (f *failingByIDLoader) EntityType() domain.EntityType { return domain.EntityContacts }
func (f *failingByIDLoader) Paginated() bool               { return true }
func (f *failingByIDLoader) SupportsSince() bool           { return true }
func (f *failingByIDLoader) FetchPage(ctx context.Context, limit, offset int, extra map[string]string) ([]Item, *int, error) {
	return nil, nil, errors.New("not used")
}
func (f *failingByIDLoader) LoadByID(ctx context.Context, id int64) error { return f.err }
