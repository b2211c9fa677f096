package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/keapsync/internal/core/domain"
	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/sync/loader"
	"github.com/vietddude/keapsync/internal/sync/reprocess"
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

type fakeSource struct {
	missing map[domain.EntityType]bool
}

func (f *fakeSource) Get(et domain.EntityType) (loader.EntityLoader, error) {
	if f.missing[et] {
		return nil, errors.New("no loader registered")
	}
	return &stubLoader{entityType: et}, nil
}

type fakeRunner struct {
	loaded    []domain.EntityType
	loadedIDs []int64
	results   map[domain.EntityType]domain.LoadResult
	errs      map[domain.EntityType]error
	oneErr    error
}

func (f *fakeRunner) LoadAll(ctx context.Context, l loader.EntityLoader, update bool) (domain.LoadResult, error) {
	et := l.EntityType()
	f.loaded = append(f.loaded, et)
	return f.results[et], f.errs[et]
}

func (f *fakeRunner) LoadOne(ctx context.Context, l loader.EntityLoader, id int64) error {
	f.loadedIDs = append(f.loadedIDs, id)
	return f.oneErr
}

type fakeReprocessor struct {
	runs  int
	stats reprocess.Stats
}

func (f *fakeReprocessor) Run(ctx context.Context) (reprocess.Stats, error) {
	f.runs++
	return f.stats, nil
}

// =============================================================================
// RunAll
// =============================================================================

func TestRunAllWalksLoadOrder(t *testing.T) {
	runner := &fakeRunner{
		results: map[domain.EntityType]domain.LoadResult{
			domain.EntityContacts: {TotalRecords: 10, SuccessCount: 10},
		},
	}
	reproc := &fakeReprocessor{}
	p := New(&fakeSource{}, runner, reproc)

	summary, err := p.RunAll(context.Background(), false)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	if len(runner.loaded) != len(domain.LoadOrder) {
		t.Fatalf("loaded %d types, want %d", len(runner.loaded), len(domain.LoadOrder))
	}
	for i, et := range domain.LoadOrder {
		if runner.loaded[i] != et {
			t.Errorf("loaded[%d] = %s, want %s", i, runner.loaded[i], et)
		}
	}
	if summary.Results[domain.EntityContacts].TotalRecords != 10 {
		t.Errorf("contacts result = %+v", summary.Results[domain.EntityContacts])
	}
	if summary.RunID == "" {
		t.Error("RunID missing")
	}
	if reproc.runs != 1 {
		t.Errorf("reprocessor ran %d times, want 1", reproc.runs)
	}
}

func TestRunAllIsolatesTypeFailures(t *testing.T) {
	runner := &fakeRunner{
		errs: map[domain.EntityType]error{
			domain.EntityTags: errors.New("upstream down"),
		},
	}
	p := New(&fakeSource{}, runner, nil)

	summary, err := p.RunAll(context.Background(), false)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(summary.Failed) != 1 || summary.Failed[0] != domain.EntityTags {
		t.Errorf("Failed = %v, want [tags]", summary.Failed)
	}
	// The failing type must not stop the types after it.
	if len(runner.loaded) != len(domain.LoadOrder) {
		t.Errorf("loaded %d types, want all %d", len(runner.loaded), len(domain.LoadOrder))
	}
}

func TestRunAllQuotaFailureDoesNotStopRemainingTypes(t *testing.T) {
	runner := &fakeRunner{
		errs: map[domain.EntityType]error{
			domain.EntityContacts: &keap.QuotaExhaustedError{Message: "quota gone"},
		},
	}
	reproc := &fakeReprocessor{}
	p := New(&fakeSource{}, runner, reproc)

	summary, err := p.RunAll(context.Background(), false)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	// Contacts sit mid-order; every type still gets an attempt.
	if len(runner.loaded) != len(domain.LoadOrder) {
		t.Errorf("loaded %d types, want all %d", len(runner.loaded), len(domain.LoadOrder))
	}
	if len(summary.Failed) != 1 || summary.Failed[0] != domain.EntityContacts {
		t.Errorf("Failed = %v, want [contacts]", summary.Failed)
	}
	if reproc.runs != 1 {
		t.Errorf("reprocessor ran %d times, want 1", reproc.runs)
	}
}

func TestRunAllSkipsUnregisteredTypes(t *testing.T) {
	runner := &fakeRunner{}
	p := New(&fakeSource{missing: map[domain.EntityType]bool{domain.EntityCampaigns: true}}, runner, nil)

	summary, err := p.RunAll(context.Background(), false)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(summary.Failed) != 1 || summary.Failed[0] != domain.EntityCampaigns {
		t.Errorf("Failed = %v, want [campaigns]", summary.Failed)
	}
	if len(runner.loaded) != len(domain.LoadOrder)-1 {
		t.Errorf("loaded %d types, want %d", len(runner.loaded), len(domain.LoadOrder)-1)
	}
}

func TestRunAllAttachesReprocessStats(t *testing.T) {
	reproc := &fakeReprocessor{stats: reprocess.Stats{TotalErrors: 3, SuccessfulReprocesses: 2}}
	p := New(&fakeSource{}, &fakeRunner{}, reproc)

	summary, err := p.RunAll(context.Background(), false)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if summary.Reproc == nil || summary.Reproc.SuccessfulReprocesses != 2 {
		t.Errorf("Reproc = %+v", summary.Reproc)
	}
}

func TestRunAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	p := New(&fakeSource{}, runner, nil)

	if _, err := p.RunAll(ctx, false); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(runner.loaded) != 0 {
		t.Errorf("loaded = %v, want none", runner.loaded)
	}
}

// =============================================================================
// RunOne
// =============================================================================

func TestRunOneSingleType(t *testing.T) {
	runner := &fakeRunner{
		results: map[domain.EntityType]domain.LoadResult{
			domain.EntityOrders: {TotalRecords: 4, SuccessCount: 4},
		},
	}
	reproc := &fakeReprocessor{}
	p := New(&fakeSource{}, runner, reproc)

	summary, err := p.RunOne(context.Background(), domain.EntityOrders, 0, false)
	if err != nil {
		t.Fatalf("RunOne failed: %v", err)
	}
	if len(runner.loaded) != 1 || runner.loaded[0] != domain.EntityOrders {
		t.Errorf("loaded = %v, want [orders]", runner.loaded)
	}
	if summary.Results[domain.EntityOrders].TotalRecords != 4 {
		t.Errorf("result = %+v", summary.Results[domain.EntityOrders])
	}
	if reproc.runs != 0 {
		t.Error("targeted runs must skip reprocessing")
	}
}

func TestRunOneSingleRecord(t *testing.T) {
	runner := &fakeRunner{}
	p := New(&fakeSource{}, runner, nil)

	summary, err := p.RunOne(context.Background(), domain.EntityContacts, 42, false)
	if err != nil {
		t.Fatalf("RunOne failed: %v", err)
	}
	if len(runner.loadedIDs) != 1 || runner.loadedIDs[0] != 42 {
		t.Errorf("loadedIDs = %v, want [42]", runner.loadedIDs)
	}
	r := summary.Results[domain.EntityContacts]
	if r.TotalRecords != 1 || r.SuccessCount != 1 {
		t.Errorf("result = %+v", r)
	}
}

func TestRunOneSingleRecordFailure(t *testing.T) {
	runner := &fakeRunner{oneErr: errors.New("record broken")}
	p := New(&fakeSource{}, runner, nil)

	summary, err := p.RunOne(context.Background(), domain.EntityContacts, 42, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	r := summary.Results[domain.EntityContacts]
	if r.TotalRecords != 1 || r.FailedCount != 1 {
		t.Errorf("result = %+v", r)
	}
	if len(summary.Failed) != 1 {
		t.Errorf("Failed = %v", summary.Failed)
	}
}

func TestRunOneUnknownType(t *testing.T) {
	p := New(&fakeSource{missing: map[domain.EntityType]bool{domain.EntityNotes: true}}, &fakeRunner{}, nil)

	if _, err := p.RunOne(context.Background(), domain.EntityNotes, 0, false); err == nil {
		t.Fatal("expected an error for an unregistered type")
	}
}
