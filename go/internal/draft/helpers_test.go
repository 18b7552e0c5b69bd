package draft

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctiondraft/go/internal/docstore"
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/models"
)

var testStart = time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)

func testPlayers() []models.Player {
	return []models.Player{
		{ID: 10, FirstName: "Josh", LastName: "Allen", Team: "BUF", Position: models.PositionQB},
		{ID: 11, FirstName: "Bijan", LastName: "Robinson", Team: "ATL", Position: models.PositionRB},
		{ID: 12, FirstName: "Justin", LastName: "Jefferson", Team: "MIN", Position: models.PositionWR},
		{ID: 13, FirstName: "Patrick", LastName: "Mahomes", Team: "KC", Position: models.PositionQB},
		{ID: 14, FirstName: "Joe", LastName: "Burrow", Team: "CIN", Position: models.PositionQB},
		{ID: 15, FirstName: "Sam", LastName: "LaPorta", Team: "DET", Position: models.PositionTE},
		{ID: 16, FirstName: "Justin", LastName: "Tucker", Team: "BAL", Position: models.PositionK},
		{ID: 17, FirstName: "Christian", LastName: "McCaffrey", Team: "SF", Position: models.PositionRB},
	}
}

func testOwners() []models.Owner {
	return []models.Owner{
		{ID: 1, OwnerName: "Alex", TeamName: "Blitz"},
		{ID: 2, OwnerName: "Blair", TeamName: "Sacks"},
		{ID: 3, OwnerName: "Cara", TeamName: "Gridiron"},
	}
}

type testEnv struct {
	app       *App
	repo      *DocumentRepository
	clock     clockwork.Clock
	dir       string
	statePath string
	log       *actionlog.Log
}

func newTestEnv(t *testing.T, cfg models.Configuration, opts ...Option) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	docs := Documents{
		State:   docstore.NewFileStore[models.DraftState](filepath.Join(dir, "draft_state.json"), docstore.WithValidator[models.DraftState](StateValidator)),
		Players: docstore.NewFileStore[[]models.Player](filepath.Join(dir, "players.json")),
		Owners:  docstore.NewFileStore[[]models.Owner](filepath.Join(dir, "owners.json")),
		Config:  docstore.NewFileStore[models.Configuration](filepath.Join(dir, "config.yaml")),
	}
	if err := docs.Players.Save(ctx, testPlayers()); err != nil {
		t.Fatalf("save players: %v", err)
	}
	if err := docs.Owners.Save(ctx, testOwners()); err != nil {
		t.Fatalf("save owners: %v", err)
	}
	if err := docs.Config.Save(ctx, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	repo, err := NewDocumentRepository(ctx, docs)
	if err != nil {
		t.Fatalf("NewDocumentRepository: %v", err)
	}
	alog := actionlog.New(docstore.NewFileStore[actionlog.Document](filepath.Join(dir, "action_log.json")))
	clock := clockwork.NewFakeClockAt(testStart)

	app, err := NewApp(repo, alog, append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if _, err := app.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	return &testEnv{
		app:       app,
		repo:      repo,
		clock:     clock,
		dir:       dir,
		statePath: filepath.Join(dir, "draft_state.json"),
		log:       alog,
	}
}

func (e *testEnv) state(t *testing.T) *models.DraftState {
	t.Helper()
	s, err := e.app.State(context.Background())
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	return s
}

func (e *testEnv) stateBytes(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(e.statePath)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	return b
}

func (e *testEnv) version(t *testing.T) *int64 {
	t.Helper()
	cur := e.state(t).Version
	return &cur
}

func ver(n int64) *int64 { return &n }

// recordingPublisher collects enqueued entries.
type recordingPublisher struct {
	mu      sync.Mutex
	entries []actionlog.Entry
}

func (p *recordingPublisher) Enqueue(e actionlog.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
}

func (p *recordingPublisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// failingLog accepts nothing.
type failingLog struct{}

func (failingLog) Append(context.Context, actionlog.Entry) error { return os.ErrPermission }

func (failingLog) Entries(context.Context) ([]actionlog.Entry, error) { return nil, os.ErrPermission }

// countingRepo counts state loads and can fail saves.
type countingRepo struct {
	Repository
	mu       sync.Mutex
	loads    int
	failSave error
}

func (r *countingRepo) LoadState(ctx context.Context) (*models.DraftState, error) {
	r.mu.Lock()
	r.loads++
	r.mu.Unlock()
	return r.Repository.LoadState(ctx)
}

func (r *countingRepo) SaveState(ctx context.Context, s *models.DraftState) error {
	if r.failSave != nil {
		return r.failSave
	}
	return r.Repository.SaveState(ctx, s)
}

func (r *countingRepo) Loads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
