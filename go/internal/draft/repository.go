package draft

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mcdev12/auctiondraft/go/internal/docstore"
	"github.com/mcdev12/auctiondraft/go/internal/models"
)

// ErrNoState is returned by LoadState before the first reset.
var ErrNoState = errors.New("draft state not initialized")

// Repository defines what the engine needs from storage. Reference data is read once
// and served from memory.
type Repository interface {
	LoadState(ctx context.Context) (*models.DraftState, error)
	SaveState(ctx context.Context, state *models.DraftState) error
	Configuration() models.Configuration
	Players() []models.Player
	Owners() []models.Owner
}

// Documents groups the stores behind a DocumentRepository.
type Documents struct {
	State   docstore.Store[models.DraftState]
	Players docstore.Store[[]models.Player]
	Owners  docstore.Store[[]models.Owner]
	Config  docstore.Store[models.Configuration]
}

// DocumentRepository keeps the draft state in a docstore and caches reference data.
type DocumentRepository struct {
	state   docstore.Store[models.DraftState]
	config  models.Configuration
	players []models.Player
	owners  []models.Owner
}

// NewDocumentRepository loads configuration, players and owners. A missing
// configuration document falls back to DefaultConfiguration.
func NewDocumentRepository(ctx context.Context, docs Documents) (*DocumentRepository, error) {
	cfg, err := docs.Config.Load(ctx)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		cfg = models.DefaultConfiguration()
	case err != nil:
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	players, err := docs.Players.Load(ctx)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	if _, err := models.IndexPlayers(players); err != nil {
		return nil, fmt.Errorf("invalid players document: %w", err)
	}

	owners, err := docs.Owners.Load(ctx)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to load owners: %w", err)
	}
	seen := make(map[int]bool, len(owners))
	for _, o := range owners {
		if o.ID <= 0 || seen[o.ID] {
			return nil, fmt.Errorf("invalid owners document: bad or duplicate owner id %d", o.ID)
		}
		seen[o.ID] = true
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].ID < owners[j].ID })

	return &DocumentRepository{
		state:   docs.State,
		config:  cfg,
		players: players,
		owners:  owners,
	}, nil
}

func (r *DocumentRepository) LoadState(ctx context.Context) (*models.DraftState, error) {
	state, err := r.state.Load(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *DocumentRepository) SaveState(ctx context.Context, state *models.DraftState) error {
	return r.state.Save(ctx, *state)
}

func (r *DocumentRepository) Configuration() models.Configuration { return r.config }

func (r *DocumentRepository) Players() []models.Player { return r.players }

func (r *DocumentRepository) Owners() []models.Owner { return r.owners }

// StateValidator is the re-parse check applied to every staged draft state document.
func StateValidator(s models.DraftState) error {
	return s.CheckStructure()
}
