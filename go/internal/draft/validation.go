package draft

import (
	"strconv"

	"github.com/mcdev12/auctiondraft/go/internal/models"
)

func (a *App) validateOwner(ownerID int) error {
	if ownerID <= 0 {
		return malformed("owner_id must be positive, got %d", ownerID)
	}
	if _, ok := a.owners[ownerID]; !ok {
		return malformed("owner %d does not exist", ownerID)
	}
	return nil
}

func (a *App) validatePlayer(playerID int) error {
	if playerID <= 0 {
		return malformed("player_id must be positive, got %d", playerID)
	}
	if _, ok := a.players[playerID]; !ok {
		return malformed("player %d does not exist", playerID)
	}
	return nil
}

func validateAmount(field string, v int) error {
	if v < 0 {
		return malformed("%s must not be negative, got %d", field, v)
	}
	return nil
}

func (a *App) validateNominateRequest(req NominateRequest) error {
	if err := a.validateOwner(req.OwnerID); err != nil {
		return err
	}
	if err := a.validatePlayer(req.PlayerID); err != nil {
		return err
	}
	return validateAmount("initial_bid", req.InitialBid)
}

func (a *App) validateBidRequest(req BidRequest) error {
	if err := a.validateOwner(req.OwnerID); err != nil {
		return err
	}
	return validateAmount("amount", req.Amount)
}

func (a *App) validateSettleRequest(req SettleRequest) error {
	if err := a.validateOwner(req.OwnerID); err != nil {
		return err
	}
	if err := a.validatePlayer(req.PlayerID); err != nil {
		return err
	}
	return validateAmount("final_price", req.FinalPrice)
}

func (a *App) validateDirectAssignRequest(req DirectAssignRequest) error {
	if err := a.validateOwner(req.OwnerID); err != nil {
		return err
	}
	return a.validatePlayer(req.PlayerID)
}

// checkBidCapacity applies the per-team limits on a bid: roster room, budget, the
// optional roster reserve and the position maximum for player.
func (a *App) checkBidCapacity(team models.Team, player models.Player, amount int) error {
	if len(team.Picks) >= a.cfg.TotalRounds {
		return ruleViolation(map[string]string{
			"picks":        strconv.Itoa(len(team.Picks)),
			"total_rounds": strconv.Itoa(a.cfg.TotalRounds),
		}, "roster full: %d of %d rounds used", len(team.Picks), a.cfg.TotalRounds)
	}

	if amount > team.BudgetRemaining {
		return insufficientBudget(amount, team.BudgetRemaining)
	}

	if a.cfg.ReserveRosterSpots {
		if limit := a.maxBid(team); amount > limit {
			return ruleViolation(amounts(amount, limit),
				"bid of $%d exceeds maximum bid of $%d (must keep $%d for each of %d open roster spots)",
				amount, limit, a.cfg.MinBid, a.openSlotsAfterNext(team))
		}
	}

	limit := a.cfg.PositionMaximum(player.Position)
	if count := team.PositionCount(player.Position, a.players); count >= limit {
		return ruleViolation(map[string]string{
			"position": string(player.Position),
			"count":    strconv.Itoa(count),
			"maximum":  strconv.Itoa(limit),
		}, "position maximum reached: already have %d of %d %s", count, limit, player.Position)
	}
	return nil
}

// openSlotsAfterNext is the number of roster spots still open once the player being
// bid on is won.
func (a *App) openSlotsAfterNext(team models.Team) int {
	open := a.cfg.TotalRounds - len(team.Picks) - 1
	if open < 0 {
		return 0
	}
	return open
}

// maxBid is the highest bid the team may place right now.
func (a *App) maxBid(team models.Team) int {
	if len(team.Picks) >= a.cfg.TotalRounds {
		return 0
	}
	limit := team.BudgetRemaining
	if a.cfg.ReserveRosterSpots {
		limit -= a.cfg.MinBid * a.openSlotsAfterNext(team)
	}
	if limit < 0 {
		return 0
	}
	return limit
}

func insufficientBudget(need, have int) *Error {
	return ruleViolation(map[string]string{
		"needed":    strconv.Itoa(need),
		"available": strconv.Itoa(have),
	}, "insufficient budget: need $%d but only have $%d", need, have)
}

func amounts(got, limit int) map[string]string {
	return map[string]string{
		"amount": strconv.Itoa(got),
		"limit":  strconv.Itoa(limit),
	}
}
