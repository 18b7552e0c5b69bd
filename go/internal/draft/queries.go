package draft

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/models"
)

// State returns the persisted draft state. Reads do not take the engine lock; the
// store's rename-based commit guarantees a whole document either way.
func (a *App) State(ctx context.Context) (*models.DraftState, error) {
	state, err := a.repo.LoadState(ctx)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return nil, notFound("draft state not initialized")
		}
		return nil, persistence("failed to load draft state", err)
	}
	return state, nil
}

// Configuration returns the league settings.
func (a *App) Configuration() models.Configuration {
	return a.cfg
}

// Players returns all players.
func (a *App) Players() []models.Player {
	return a.repo.Players()
}

// Owners returns all owners sorted by id.
func (a *App) Owners() []models.Owner {
	return a.repo.Owners()
}

// Owner returns a single owner.
func (a *App) Owner(id int) (models.Owner, error) {
	o, ok := a.owners[id]
	if !ok {
		return models.Owner{}, notFound("owner %d not found", id)
	}
	return o, nil
}

// AvailablePlayers returns the undrafted players in id order.
func (a *App) AvailablePlayers(ctx context.Context) ([]models.Player, error) {
	state, err := a.State(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Player, 0, len(state.AvailablePlayerIDs))
	for _, id := range state.AvailablePlayerIDs {
		if p, ok := a.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// TeamRoster returns an owner's team with player details and bidding headroom.
func (a *App) TeamRoster(ctx context.Context, ownerID int) (*TeamRoster, error) {
	owner, err := a.Owner(ownerID)
	if err != nil {
		return nil, err
	}
	state, err := a.State(ctx)
	if err != nil {
		return nil, err
	}
	team := state.Team(ownerID)
	if team == nil {
		return nil, notFound("team for owner %d not found", ownerID)
	}

	roster := make([]RosterEntry, 0, len(team.Picks))
	for _, pick := range team.Picks {
		roster = append(roster, RosterEntry{Pick: pick, Player: a.players[pick.PlayerID]})
	}
	open := a.cfg.TotalRounds - len(team.Picks)
	if open < 0 {
		open = 0
	}
	return &TeamRoster{
		Owner:           owner,
		BudgetRemaining: team.BudgetRemaining,
		MaxBid:          a.maxBid(*team),
		OpenSlots:       open,
		Roster:          roster,
	}, nil
}

// History returns the action log in append order.
func (a *App) History(ctx context.Context) ([]actionlog.Entry, error) {
	entries, err := a.log.Entries(ctx)
	if err != nil {
		return nil, persistence("failed to read action log", err)
	}
	return entries, nil
}

// Verify loads the current state and runs every invariant check against it.
func (a *App) Verify(ctx context.Context) (*models.DraftState, error) {
	state, err := a.State(ctx)
	if err != nil {
		return nil, err
	}
	if err := state.CheckInvariants(a.cfg, a.players); err != nil {
		return state, &Error{Code: CodeDataIntegrity, Message: fmt.Sprintf("draft state at version %d is inconsistent", state.Version), Cause: err}
	}
	return state, nil
}
