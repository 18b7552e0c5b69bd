package draft

import (
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/models"
)

// NominateRequest puts a player up for auction with an opening bid
type NominateRequest struct {
	OwnerID         int    `json:"owner_id"`
	PlayerID        int    `json:"player_id"`
	InitialBid      int    `json:"initial_bid"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// BidRequest raises the bid on the active nomination
type BidRequest struct {
	OwnerID         int    `json:"owner_id"`
	Amount          int    `json:"amount"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// SettleRequest awards the nominated player to the winning bidder
type SettleRequest struct {
	OwnerID         int    `json:"owner_id"`
	PlayerID        int    `json:"player_id"`
	FinalPrice      int    `json:"final_price"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// CancelNominationRequest abandons the active nomination
type CancelNominationRequest struct {
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// UndoPickRequest reverses a pick by id
type UndoPickRequest struct {
	PickID          int    `json:"pick_id"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// DirectAssignRequest places a player on a roster without an auction (keepers, imports)
type DirectAssignRequest struct {
	OwnerID         int    `json:"owner_id"`
	PlayerID        int    `json:"player_id"`
	Price           int    `json:"price"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// ResetRequest reinitializes the draft. Force skips the version check.
type ResetRequest struct {
	Force           bool   `json:"force"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// Result is returned by every accepted mutation.
type Result struct {
	State   *models.DraftState
	Version int64
	Entry   actionlog.Entry

	// Pick is set by Settle, DirectAssign and UndoPick (the removed pick).
	Pick *models.DraftPick
	// CancelledPlayerID is set by CancelNomination.
	CancelledPlayerID *int

	// Warnings carry non-fatal problems after commit, such as a failed log append.
	Warnings []string
}

// RosterEntry is a pick joined with its player.
type RosterEntry struct {
	Pick   models.DraftPick `json:"pick"`
	Player models.Player    `json:"player"`
}

// TeamRoster is a team with its picks expanded.
type TeamRoster struct {
	Owner           models.Owner  `json:"owner"`
	BudgetRemaining int           `json:"budget_remaining"`
	MaxBid          int           `json:"max_bid"`
	OpenSlots       int           `json:"open_slots"`
	Roster          []RosterEntry `json:"roster"`
}
