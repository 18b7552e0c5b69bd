package models

import (
	"errors"
	"fmt"
	"sort"
)

// Nominated is the auction currently in progress. At most one exists at a time.
type Nominated struct {
	PlayerID          int `json:"player_id"`
	CurrentBid        int `json:"current_bid"`
	CurrentBidderID   int `json:"current_bidder_id"`
	NominatingOwnerID int `json:"nominating_owner_id"`
}

// DraftState is the aggregate root persisted as a single document.
type DraftState struct {
	Nominated             *Nominated `json:"nominated"`
	AvailablePlayerIDs    []int      `json:"available_player_ids"`
	Teams                 []Team     `json:"teams"`
	OwnerIDNextToNominate int        `json:"owner_id_next_to_nominate"`
	Version               int64      `json:"version"`
	NextPickID            int        `json:"next_pick_id"`
}

// NewDraftState builds the starting state: every player available, every owner at the
// initial budget, the lowest owner id due to nominate, version 1. nextPickID carries the
// pick allocator forward across resets.
func NewDraftState(cfg Configuration, players []Player, owners []Owner, nextPickID int) *DraftState {
	if nextPickID < 1 {
		nextPickID = 1
	}

	available := make([]int, 0, len(players))
	for _, p := range players {
		available = append(available, p.ID)
	}
	sort.Ints(available)

	ownerIDs := make([]int, 0, len(owners))
	for _, o := range owners {
		ownerIDs = append(ownerIDs, o.ID)
	}
	sort.Ints(ownerIDs)

	teams := make([]Team, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		teams = append(teams, Team{OwnerID: id, BudgetRemaining: cfg.InitialBudget, Picks: []DraftPick{}})
	}

	next := 1
	if len(ownerIDs) > 0 {
		next = ownerIDs[0]
	}

	return &DraftState{
		AvailablePlayerIDs:    available,
		Teams:                 teams,
		OwnerIDNextToNominate: next,
		Version:               1,
		NextPickID:            nextPickID,
	}
}

// Clone returns a deep copy.
func (s *DraftState) Clone() *DraftState {
	out := *s
	if s.Nominated != nil {
		n := *s.Nominated
		out.Nominated = &n
	}
	out.AvailablePlayerIDs = append([]int{}, s.AvailablePlayerIDs...)
	out.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		t.Picks = append([]DraftPick{}, t.Picks...)
		out.Teams[i] = t
	}
	return &out
}

// Team returns a pointer to the owner's team inside the state, or nil.
func (s *DraftState) Team(ownerID int) *Team {
	for i := range s.Teams {
		if s.Teams[i].OwnerID == ownerID {
			return &s.Teams[i]
		}
	}
	return nil
}

// IsAvailable reports whether playerID is in the available set.
func (s *DraftState) IsAvailable(playerID int) bool {
	i := sort.SearchInts(s.AvailablePlayerIDs, playerID)
	if i < len(s.AvailablePlayerIDs) && s.AvailablePlayerIDs[i] == playerID {
		return true
	}
	// tolerate unsorted documents written by hand
	for _, id := range s.AvailablePlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// RemoveAvailable drops playerID from the available set.
func (s *DraftState) RemoveAvailable(playerID int) {
	out := s.AvailablePlayerIDs[:0]
	for _, id := range s.AvailablePlayerIDs {
		if id != playerID {
			out = append(out, id)
		}
	}
	s.AvailablePlayerIDs = out
}

// AddAvailable re-adds playerID keeping the set sorted.
func (s *DraftState) AddAvailable(playerID int) {
	s.AvailablePlayerIDs = append(s.AvailablePlayerIDs, playerID)
	sort.Ints(s.AvailablePlayerIDs)
}

// LocatePick returns every team index holding pickID.
func (s *DraftState) LocatePick(pickID int) []int {
	var found []int
	for i, t := range s.Teams {
		if t.FindPick(pickID) >= 0 {
			found = append(found, i)
		}
	}
	return found
}

// NextOwnerAfter returns the owner id that follows ownerID in ascending order,
// wrapping to the lowest.
func (s *DraftState) NextOwnerAfter(ownerID int) int {
	if len(s.Teams) == 0 {
		return ownerID
	}
	ids := make([]int, 0, len(s.Teams))
	for _, t := range s.Teams {
		ids = append(ids, t.OwnerID)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if id > ownerID {
			return id
		}
	}
	return ids[0]
}

// ErrInvariant is wrapped by every invariant check failure.
var ErrInvariant = errors.New("draft state invariant violated")

// CheckStructure verifies what can be checked without reference data: no player held
// twice, unique pick ids below the allocator, a positive version.
func (s *DraftState) CheckStructure() error {
	if s.Version < 1 {
		return fmt.Errorf("%w: version %d below 1", ErrInvariant, s.Version)
	}

	seenPlayer := make(map[int]string)
	for _, id := range s.AvailablePlayerIDs {
		if _, dup := seenPlayer[id]; dup {
			return fmt.Errorf("%w: player %d listed twice as available", ErrInvariant, id)
		}
		seenPlayer[id] = "available"
	}

	seenPick := make(map[int]bool)
	seenOwner := make(map[int]bool)
	for _, t := range s.Teams {
		if seenOwner[t.OwnerID] {
			return fmt.Errorf("%w: duplicate team for owner %d", ErrInvariant, t.OwnerID)
		}
		seenOwner[t.OwnerID] = true
		where := fmt.Sprintf("team %d", t.OwnerID)
		for _, p := range t.Picks {
			if seenPick[p.PickID] {
				return fmt.Errorf("%w: pick id %d used twice", ErrInvariant, p.PickID)
			}
			seenPick[p.PickID] = true
			if p.PickID >= s.NextPickID {
				return fmt.Errorf("%w: pick id %d not below allocator %d", ErrInvariant, p.PickID, s.NextPickID)
			}
			if p.OwnerID != t.OwnerID {
				return fmt.Errorf("%w: pick %d owned by %d stored on team %d", ErrInvariant, p.PickID, p.OwnerID, t.OwnerID)
			}
			if prev, dup := seenPlayer[p.PlayerID]; dup {
				return fmt.Errorf("%w: player %d in %s and %s", ErrInvariant, p.PlayerID, prev, where)
			}
			seenPlayer[p.PlayerID] = where
		}
	}

	if s.Nominated != nil {
		if where, ok := seenPlayer[s.Nominated.PlayerID]; !ok || where != "available" {
			return fmt.Errorf("%w: nominated player %d is not available", ErrInvariant, s.Nominated.PlayerID)
		}
	}
	return nil
}

// CheckInvariants runs CheckStructure plus the checks that need configuration and the
// full player set: every player available or drafted exactly once, nominated bid at
// least the minimum, budgets matching spend.
func (s *DraftState) CheckInvariants(cfg Configuration, players PlayerIndex) error {
	if err := s.CheckStructure(); err != nil {
		return err
	}

	held := make(map[int]bool, len(players))
	for _, id := range s.AvailablePlayerIDs {
		held[id] = true
	}
	for _, t := range s.Teams {
		for _, p := range t.Picks {
			held[p.PlayerID] = true
		}
	}
	for id := range held {
		if _, ok := players[id]; !ok {
			return fmt.Errorf("%w: unknown player %d", ErrInvariant, id)
		}
	}
	for id := range players {
		if !held[id] {
			return fmt.Errorf("%w: player %d neither available nor drafted", ErrInvariant, id)
		}
	}

	if s.Nominated != nil && s.Nominated.CurrentBid < cfg.MinBid {
		return fmt.Errorf("%w: current bid $%d below minimum $%d", ErrInvariant, s.Nominated.CurrentBid, cfg.MinBid)
	}

	for _, t := range s.Teams {
		if want := cfg.InitialBudget - t.Spent(); t.BudgetRemaining != want {
			return fmt.Errorf("%w: team %d budget $%d, expected $%d", ErrInvariant, t.OwnerID, t.BudgetRemaining, want)
		}
		if t.BudgetRemaining < 0 && !t.HasDirectAssignment() {
			return fmt.Errorf("%w: team %d budget negative without a direct assignment", ErrInvariant, t.OwnerID)
		}
	}
	return nil
}
