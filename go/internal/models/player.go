package models

import (
	"fmt"
	"strings"
)

// Position defines a roster position.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDST Position = "D/ST"
)

// Positions lists every position in roster display order.
var Positions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDST}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePosition accepts a position in any case ("dst" and "def" map to D/ST).
func ParsePosition(s string) (Position, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "DST", "DEF", "D/ST":
		return PositionDST, nil
	}
	p := Position(v)
	if !p.Valid() {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// NFLTeam is an NFL franchise abbreviation.
type NFLTeam string

// NFLTeams lists the 32 franchises.
var NFLTeams = []NFLTeam{
	"ARI", "ATL", "BAL", "BUF", "CAR", "CHI", "CIN", "CLE",
	"DAL", "DEN", "DET", "GB", "HOU", "IND", "JAX", "KC",
	"LV", "LAC", "LAR", "MIA", "MIN", "NE", "NO", "NYG",
	"NYJ", "PHI", "PIT", "SF", "SEA", "TB", "TEN", "WAS",
}

// Valid reports whether t is one of the 32 franchises.
func (t NFLTeam) Valid() bool {
	for _, known := range NFLTeams {
		if t == known {
			return true
		}
	}
	return false
}

// Player represents a draftable NFL player. Players are reference data and never change
// during a draft; prices live on DraftPick.
type Player struct {
	ID        int      `json:"id" yaml:"id"`
	FirstName string   `json:"first_name" yaml:"first_name"`
	LastName  string   `json:"last_name" yaml:"last_name"`
	Team      NFLTeam  `json:"team" yaml:"team"`
	Position  Position `json:"position" yaml:"position"`
}

// FullName returns "First Last".
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// DisplayName returns "Last, F." or just the last name when there is no first name.
func (p Player) DisplayName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return fmt.Sprintf("%s, %s.", p.LastName, p.FirstName[:1])
}

// Validate checks the player's enumerated fields.
func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be positive, got %d", p.ID)
	}
	if !p.Team.Valid() {
		return fmt.Errorf("player %d: unknown NFL team %q", p.ID, p.Team)
	}
	if !p.Position.Valid() {
		return fmt.Errorf("player %d: unknown position %q", p.ID, p.Position)
	}
	return nil
}

// Owner is a league member who runs one team in the draft.
type Owner struct {
	ID        int    `json:"id" yaml:"id"`
	OwnerName string `json:"owner_name" yaml:"owner_name"`
	TeamName  string `json:"team_name" yaml:"team_name"`
}

// PlayerIndex maps player ids to players.
type PlayerIndex map[int]Player

// IndexPlayers builds a PlayerIndex, rejecting invalid or duplicate players.
func IndexPlayers(players []Player) (PlayerIndex, error) {
	idx := make(PlayerIndex, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := idx[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %d", p.ID)
		}
		idx[p.ID] = p
	}
	return idx, nil
}
