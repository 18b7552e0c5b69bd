package events

import (
	"encoding/json"
	"fmt"
)

// Action identifies the kind of an accepted mutation.
type Action string

const (
	ActionNominate         Action = "nominate"
	ActionBid              Action = "bid"
	ActionSettle           Action = "settle"
	ActionCancelNomination Action = "cancel_nomination"
	ActionUndo             Action = "undo"
	ActionDirectAssign     Action = "direct_assign"
	ActionReset            Action = "reset"
)

// Payload is implemented only by the payload types in this package, one per Action.
type Payload interface {
	Action() Action
	sealed()
}

// NominatePayload is the payload for a nominate action
type NominatePayload struct {
	PlayerID   int `json:"player_id"`
	InitialBid int `json:"initial_bid"`
}

// BidPayload is the payload for a bid action
type BidPayload struct {
	PlayerID         int `json:"player_id"`
	Amount           int `json:"amount"`
	PreviousBid      int `json:"previous_bid"`
	PreviousBidderID int `json:"previous_bidder_id"`
}

// SettlePayload is the payload for a settle action
type SettlePayload struct {
	PickID         int `json:"pick_id"`
	PlayerID       int `json:"player_id"`
	Price          int `json:"price"`
	NextToNominate int `json:"next_to_nominate"`
}

// CancelNominationPayload is the payload for a cancel_nomination action
type CancelNominationPayload struct {
	PlayerID   int `json:"player_id"`
	CurrentBid int `json:"current_bid"`
}

// UndoPayload is the payload for an undo action
type UndoPayload struct {
	PickID   int `json:"pick_id"`
	PlayerID int `json:"player_id"`
	OwnerID  int `json:"owner_id"`
	Refund   int `json:"refund"`
}

// DirectAssignPayload is the payload for a direct_assign action
type DirectAssignPayload struct {
	PickID   int `json:"pick_id"`
	PlayerID int `json:"player_id"`
	Price    int `json:"price"`
}

// ResetPayload is the payload for a reset action
type ResetPayload struct {
	Forced          bool  `json:"forced"`
	PreviousVersion int64 `json:"previous_version"`
}

func (NominatePayload) Action() Action         { return ActionNominate }
func (BidPayload) Action() Action              { return ActionBid }
func (SettlePayload) Action() Action           { return ActionSettle }
func (CancelNominationPayload) Action() Action { return ActionCancelNomination }
func (UndoPayload) Action() Action             { return ActionUndo }
func (DirectAssignPayload) Action() Action     { return ActionDirectAssign }
func (ResetPayload) Action() Action            { return ActionReset }

func (NominatePayload) sealed()         {}
func (BidPayload) sealed()              {}
func (SettlePayload) sealed()           {}
func (CancelNominationPayload) sealed() {}
func (UndoPayload) sealed()             {}
func (DirectAssignPayload) sealed()     {}
func (ResetPayload) sealed()            {}

// Decode parses raw into the payload type registered for action.
func Decode(action Action, raw json.RawMessage) (Payload, error) {
	switch action {
	case ActionNominate:
		return decodeInto[NominatePayload](action, raw)
	case ActionBid:
		return decodeInto[BidPayload](action, raw)
	case ActionSettle:
		return decodeInto[SettlePayload](action, raw)
	case ActionCancelNomination:
		return decodeInto[CancelNominationPayload](action, raw)
	case ActionUndo:
		return decodeInto[UndoPayload](action, raw)
	case ActionDirectAssign:
		return decodeInto[DirectAssignPayload](action, raw)
	case ActionReset:
		return decodeInto[ResetPayload](action, raw)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

func decodeInto[P Payload](action Action, raw json.RawMessage) (Payload, error) {
	var p P
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing payload for action %q", action)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid payload for action %q: %w", action, err)
	}
	return p, nil
}
