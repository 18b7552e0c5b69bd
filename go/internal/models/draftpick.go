package models

// DraftPick represents a single won (or directly assigned) player.
type DraftPick struct {
	PickID         int  `json:"pick_id"`
	PlayerID       int  `json:"player_id"`
	OwnerID        int  `json:"owner_id"`
	Price          int  `json:"price"`
	DirectAssigned bool `json:"direct_assigned,omitempty"` // keeper or import, skipped budget checks
}

// Team is one owner's roster and remaining budget.
type Team struct {
	OwnerID         int         `json:"owner_id"`
	BudgetRemaining int         `json:"budget_remaining"`
	Picks           []DraftPick `json:"picks"`
}

// Spent returns the sum of all pick prices.
func (t Team) Spent() int {
	total := 0
	for _, p := range t.Picks {
		total += p.Price
	}
	return total
}

// PositionCount counts picks whose player plays pos.
func (t Team) PositionCount(pos Position, players PlayerIndex) int {
	n := 0
	for _, p := range t.Picks {
		if pl, ok := players[p.PlayerID]; ok && pl.Position == pos {
			n++
		}
	}
	return n
}

// FindPick returns the index of pickID in the team's picks, or -1.
func (t Team) FindPick(pickID int) int {
	for i, p := range t.Picks {
		if p.PickID == pickID {
			return i
		}
	}
	return -1
}

// HasDirectAssignment reports whether any pick bypassed budget checks.
func (t Team) HasDirectAssignment() bool {
	for _, p := range t.Picks {
		if p.DirectAssigned {
			return true
		}
	}
	return false
}
