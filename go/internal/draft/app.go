package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/draft/events"
	"github.com/mcdev12/auctiondraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ActionLogger defines what the engine needs from the action log
type ActionLogger interface {
	Append(ctx context.Context, entry actionlog.Entry) error
	Entries(ctx context.Context) ([]actionlog.Entry, error)
}

// Publisher receives committed entries after the engine lock is released.
type Publisher interface {
	Enqueue(entry actionlog.Entry)
}

// App is the single mutator of the draft state. Every mutation runs load, version
// check, rule checks and commit while holding mu, so two requests can never both
// build on the same version.
type App struct {
	repo      Repository
	log       ActionLogger
	clock     clockwork.Clock
	publisher Publisher

	cfg     models.Configuration
	players models.PlayerIndex
	owners  map[int]models.Owner

	mu sync.Mutex
}

// Option configures an App.
type Option func(*App)

// WithClock sets the clock used for action log timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithPublisher forwards every committed entry to p.
func WithPublisher(p Publisher) Option {
	return func(a *App) { a.publisher = p }
}

// NewApp creates a new draft App
func NewApp(repo Repository, actionLog ActionLogger, opts ...Option) (*App, error) {
	players, err := models.IndexPlayers(repo.Players())
	if err != nil {
		return nil, fmt.Errorf("invalid players: %w", err)
	}
	owners := make(map[int]models.Owner, len(repo.Owners()))
	for _, o := range repo.Owners() {
		owners[o.ID] = o
	}

	a := &App{
		repo:    repo,
		log:     actionLog,
		clock:   clockwork.NewRealClock(),
		cfg:     repo.Configuration(),
		players: players,
		owners:  owners,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// change is what a rule-checked operation hands to commit.
type change struct {
	ownerID           *int
	payload           events.Payload
	pick              *models.DraftPick
	cancelledPlayerID *int
}

// mutateFunc validates against cur and edits next, a private copy of cur.
type mutateFunc func(cur, next *models.DraftState) (*change, error)

func (a *App) mutate(ctx context.Context, expected *int64, fn mutateFunc) (*Result, error) {
	a.mu.Lock()
	res, err := a.mutateLocked(ctx, expected, fn)
	a.mu.Unlock()

	if err != nil {
		return nil, err
	}
	a.publish(res.Entry)
	return res, nil
}

func (a *App) mutateLocked(ctx context.Context, expected *int64, fn mutateFunc) (*Result, error) {
	cur, err := a.repo.LoadState(ctx)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return nil, persistence("draft state not initialized, reset required", err)
		}
		return nil, persistence("failed to load draft state", err)
	}

	if expected != nil && *expected != cur.Version {
		return nil, conflict(*expected, cur.Version)
	}

	next := cur.Clone()
	ch, err := fn(cur, next)
	if err != nil {
		return nil, err
	}
	next.Version = cur.Version + 1

	return a.commit(ctx, next, ch)
}

// commit checks invariants on next, persists it and appends the log entry. A log
// failure does not undo the commit; it is reported as a warning.
func (a *App) commit(ctx context.Context, next *models.DraftState, ch *change) (*Result, error) {
	if err := next.CheckInvariants(a.cfg, a.players); err != nil {
		return nil, &Error{Code: CodeDataIntegrity, Message: "mutation would break draft state invariants", Cause: err}
	}
	if err := a.repo.SaveState(ctx, next); err != nil {
		return nil, persistence("failed to commit draft state", err)
	}

	entry := actionlog.Entry{
		ID:        uuid.New(),
		Timestamp: a.clock.Now().UTC(),
		OwnerID:   ch.ownerID,
		Version:   next.Version,
		Payload:   ch.payload,
	}
	res := &Result{
		State:             next,
		Version:           next.Version,
		Entry:             entry,
		Pick:              ch.pick,
		CancelledPlayerID: ch.cancelledPlayerID,
	}

	if err := a.log.Append(ctx, entry); err != nil {
		log.Warn().
			Err(err).
			Str("action", string(entry.Action())).
			Int64("version", next.Version).
			Msg("draft state committed but action log append failed")
		res.Warnings = append(res.Warnings, fmt.Sprintf("action log append failed: %v", err))
	}

	log.Info().
		Str("action", string(entry.Action())).
		Int64("version", next.Version).
		Str("entry_id", entry.ID.String()).
		Msg("draft action committed")

	return res, nil
}

func (a *App) publish(entry actionlog.Entry) {
	if a.publisher != nil {
		a.publisher.Enqueue(entry)
	}
}

// Nominate opens an auction on an available player.
func (a *App) Nominate(ctx context.Context, req NominateRequest) (*Result, error) {
	if err := a.validateNominateRequest(req); err != nil {
		return nil, err
	}

	return a.mutate(ctx, req.ExpectedVersion, func(cur, next *models.DraftState) (*change, error) {
		if cur.Nominated != nil {
			return nil, ruleViolation(nil, "nomination already active for player %d", cur.Nominated.PlayerID)
		}
		if req.InitialBid < a.cfg.MinBid {
			return nil, ruleViolation(amounts(req.InitialBid, a.cfg.MinBid),
				"initial bid must be at least $%d, got $%d", a.cfg.MinBid, req.InitialBid)
		}
		if !cur.IsAvailable(req.PlayerID) {
			return nil, ruleViolation(nil, "player %d is not available", req.PlayerID)
		}

		next.Nominated = &models.Nominated{
			PlayerID:          req.PlayerID,
			CurrentBid:        req.InitialBid,
			CurrentBidderID:   req.OwnerID,
			NominatingOwnerID: req.OwnerID,
		}
		return &change{
			ownerID: intPtr(req.OwnerID),
			payload: events.NominatePayload{PlayerID: req.PlayerID, InitialBid: req.InitialBid},
		}, nil
	})
}

// Bid raises the current bid on the active nomination.
func (a *App) Bid(ctx context.Context, req BidRequest) (*Result, error) {
	if err := a.validateBidRequest(req); err != nil {
		return nil, err
	}

	return a.mutate(ctx, req.ExpectedVersion, func(cur, next *models.DraftState) (*change, error) {
		nom := cur.Nominated
		if nom == nil {
			return nil, ruleViolation(nil, "no active nomination")
		}
		if req.Amount <= nom.CurrentBid {
			return nil, ruleViolation(amounts(req.Amount, nom.CurrentBid),
				"bid must exceed current bid of $%d", nom.CurrentBid)
		}
		if req.Amount < a.cfg.MinBid {
			return nil, ruleViolation(amounts(req.Amount, a.cfg.MinBid),
				"bid must be at least $%d", a.cfg.MinBid)
		}

		team := cur.Team(req.OwnerID)
		if team == nil {
			return nil, integrity("no team for owner %d", req.OwnerID)
		}
		if err := a.checkBidCapacity(*team, a.players[nom.PlayerID], req.Amount); err != nil {
			return nil, err
		}

		next.Nominated.CurrentBid = req.Amount
		next.Nominated.CurrentBidderID = req.OwnerID
		return &change{
			ownerID: intPtr(req.OwnerID),
			payload: events.BidPayload{
				PlayerID:         nom.PlayerID,
				Amount:           req.Amount,
				PreviousBid:      nom.CurrentBid,
				PreviousBidderID: nom.CurrentBidderID,
			},
		}, nil
	})
}

// Settle awards the nominated player to the high bidder at the current bid.
func (a *App) Settle(ctx context.Context, req SettleRequest) (*Result, error) {
	if err := a.validateSettleRequest(req); err != nil {
		return nil, err
	}

	return a.mutate(ctx, req.ExpectedVersion, func(cur, next *models.DraftState) (*change, error) {
		nom := cur.Nominated
		if nom == nil {
			return nil, ruleViolation(nil, "no active nomination")
		}
		if nom.PlayerID != req.PlayerID {
			return nil, ruleViolation(nil, "player %d is not the nominated player %d", req.PlayerID, nom.PlayerID)
		}
		if req.FinalPrice != nom.CurrentBid {
			return nil, ruleViolation(amounts(req.FinalPrice, nom.CurrentBid),
				"final price $%d does not match current bid of $%d", req.FinalPrice, nom.CurrentBid)
		}
		if req.OwnerID != nom.CurrentBidderID {
			return nil, ruleViolation(nil, "owner %d is not the current high bidder (owner %d)", req.OwnerID, nom.CurrentBidderID)
		}

		team := next.Team(req.OwnerID)
		if team == nil {
			return nil, integrity("no team for owner %d", req.OwnerID)
		}
		if team.BudgetRemaining < req.FinalPrice {
			return nil, insufficientBudget(req.FinalPrice, team.BudgetRemaining)
		}

		pick := allocatePick(next, team, req.PlayerID, req.FinalPrice, false)
		next.Nominated = nil
		next.OwnerIDNextToNominate = next.NextOwnerAfter(cur.OwnerIDNextToNominate)

		return &change{
			ownerID: intPtr(req.OwnerID),
			pick:    &pick,
			payload: events.SettlePayload{
				PickID:         pick.PickID,
				PlayerID:       pick.PlayerID,
				Price:          pick.Price,
				NextToNominate: next.OwnerIDNextToNominate,
			},
		}, nil
	})
}

// CancelNomination clears the active nomination without touching budgets or rosters.
func (a *App) CancelNomination(ctx context.Context, req CancelNominationRequest) (*Result, error) {
	return a.mutate(ctx, req.ExpectedVersion, func(cur, next *models.DraftState) (*change, error) {
		if cur.Nominated == nil {
			return nil, ruleViolation(nil, "no active nomination")
		}
		playerID := cur.Nominated.PlayerID
		next.Nominated = nil
		return &change{
			cancelledPlayerID: &playerID,
			payload:           events.CancelNominationPayload{PlayerID: playerID, CurrentBid: cur.Nominated.CurrentBid},
		}, nil
	})
}

// UndoPick removes a pick, refunds its price and returns the player to the pool.
// Nomination order is left where it is.
func (a *App) UndoPick(ctx context.Context, req UndoPickRequest) (*Result, error) {
	if req.PickID <= 0 {
		return nil, malformed("pick_id must be positive, got %d", req.PickID)
	}

	return a.mutate(ctx, req.ExpectedVersion, func(cur, next *models.DraftState) (*change, error) {
		holders := next.LocatePick(req.PickID)
		switch len(holders) {
		case 0:
			return nil, integrity("pick %d not found", req.PickID)
		case 1:
		default:
			return nil, integrity("pick %d found on %d teams", req.PickID, len(holders))
		}

		team := &next.Teams[holders[0]]
		idx := team.FindPick(req.PickID)
		pick := team.Picks[idx]
		if next.IsAvailable(pick.PlayerID) {
			return nil, integrity("player %d from pick %d is also marked available", pick.PlayerID, pick.PickID)
		}

		team.Picks = append(team.Picks[:idx], team.Picks[idx+1:]...)
		team.BudgetRemaining += pick.Price
		next.AddAvailable(pick.PlayerID)

		return &change{
			ownerID: intPtr(pick.OwnerID),
			pick:    &pick,
			payload: events.UndoPayload{PickID: pick.PickID, PlayerID: pick.PlayerID, OwnerID: pick.OwnerID, Refund: pick.Price},
		}, nil
	})
}

// DirectAssign places an available player on a roster without budget or position
// checks. The budget may go negative.
func (a *App) DirectAssign(ctx context.Context, req DirectAssignRequest) (*Result, error) {
	if err := a.validateDirectAssignRequest(req); err != nil {
		return nil, err
	}

	return a.mutate(ctx, req.ExpectedVersion, func(cur, next *models.DraftState) (*change, error) {
		if req.Price <= 0 {
			return nil, ruleViolation(nil, "price must be positive, got $%d", req.Price)
		}
		if !cur.IsAvailable(req.PlayerID) {
			return nil, ruleViolation(nil, "player %d is not available", req.PlayerID)
		}
		if cur.Nominated != nil && cur.Nominated.PlayerID == req.PlayerID {
			return nil, ruleViolation(nil, "player %d is currently nominated", req.PlayerID)
		}
		team := next.Team(req.OwnerID)
		if team == nil {
			return nil, integrity("no team for owner %d", req.OwnerID)
		}

		pick := allocatePick(next, team, req.PlayerID, req.Price, true)
		if team.BudgetRemaining < 0 {
			log.Warn().
				Int("owner_id", req.OwnerID).
				Int("budget_remaining", team.BudgetRemaining).
				Msg("direct assignment left team over budget")
		}

		return &change{
			ownerID: intPtr(req.OwnerID),
			pick:    &pick,
			payload: events.DirectAssignPayload{PickID: pick.PickID, PlayerID: pick.PlayerID, Price: pick.Price},
		}, nil
	})
}

// Reset rebuilds the draft from configuration and reference data at version 1. Without
// Force it is subject to the version check. The pick id allocator is carried over so
// ids handed out before the reset are never reissued.
func (a *App) Reset(ctx context.Context, req ResetRequest) (*Result, error) {
	a.mu.Lock()
	res, err := a.resetLocked(ctx, req)
	a.mu.Unlock()

	if err != nil {
		return nil, err
	}
	a.publish(res.Entry)
	return res, nil
}

func (a *App) resetLocked(ctx context.Context, req ResetRequest) (*Result, error) {
	var prevVersion int64
	nextPickID := 1

	cur, err := a.repo.LoadState(ctx)
	switch {
	case err == nil:
		prevVersion = cur.Version
		nextPickID = cur.NextPickID
	case errors.Is(err, ErrNoState):
	case req.Force:
		// a forced reset may replace an unreadable document
		log.Warn().Err(err).Msg("forced reset over unreadable draft state")
	default:
		return nil, persistence("failed to load draft state", err)
	}

	if !req.Force && req.ExpectedVersion != nil && *req.ExpectedVersion != prevVersion {
		return nil, conflict(*req.ExpectedVersion, prevVersion)
	}

	next := models.NewDraftState(a.cfg, a.repo.Players(), a.repo.Owners(), nextPickID)
	res, err := a.commit(ctx, next, &change{
		payload: events.ResetPayload{Forced: req.Force, PreviousVersion: prevVersion},
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Bool("forced", req.Force).
		Int64("previous_version", prevVersion).
		Int("players", len(next.AvailablePlayerIDs)).
		Int("teams", len(next.Teams)).
		Msg("draft reset")
	return res, nil
}

// Bootstrap creates the initial draft state when none has been saved yet.
func (a *App) Bootstrap(ctx context.Context) (*models.DraftState, error) {
	state, err := a.repo.LoadState(ctx)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrNoState) {
		return nil, persistence("failed to load draft state", err)
	}

	res, err := a.Reset(ctx, ResetRequest{Force: true})
	if err != nil {
		return nil, err
	}
	return res.State, nil
}

func allocatePick(s *models.DraftState, team *models.Team, playerID, price int, direct bool) models.DraftPick {
	pick := models.DraftPick{
		PickID:         s.NextPickID,
		PlayerID:       playerID,
		OwnerID:        team.OwnerID,
		Price:          price,
		DirectAssigned: direct,
	}
	s.NextPickID++
	team.Picks = append(team.Picks, pick)
	team.BudgetRemaining -= price
	s.RemoveAvailable(playerID)
	return pick
}

func intPtr(v int) *int { return &v }
