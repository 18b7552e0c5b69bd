package models

import "fmt"

// Configuration holds the league's auction settings. It is loaded once at startup and
// treated as immutable afterwards.
type Configuration struct {
	InitialBudget    int              `json:"initial_budget" yaml:"initial_budget"`
	MinBid           int              `json:"min_bid" yaml:"min_bid"`
	PositionMaximums map[Position]int `json:"position_maximums" yaml:"position_maximums"`
	TotalRounds      int              `json:"total_rounds" yaml:"total_rounds"`
	DataDirectory    string           `json:"data_directory" yaml:"data_directory"`

	// ReserveRosterSpots caps bids so an owner keeps min_bid for every roster slot
	// still open after the current player.
	ReserveRosterSpots bool `json:"reserve_roster_spots,omitempty" yaml:"reserve_roster_spots,omitempty"`
}

// DefaultConfiguration returns the standard league settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		InitialBudget: 200,
		MinBid:        1,
		PositionMaximums: map[Position]int{
			PositionQB:  2,
			PositionRB:  4,
			PositionWR:  5,
			PositionTE:  2,
			PositionK:   1,
			PositionDST: 1,
		},
		TotalRounds:   15,
		DataDirectory: "data",
	}
}

// Validate checks the settings for values the engine cannot work with.
func (c Configuration) Validate() error {
	if c.InitialBudget <= 0 {
		return fmt.Errorf("initial_budget must be positive, got %d", c.InitialBudget)
	}
	if c.MinBid <= 0 {
		return fmt.Errorf("min_bid must be positive, got %d", c.MinBid)
	}
	if c.MinBid > c.InitialBudget {
		return fmt.Errorf("min_bid %d exceeds initial_budget %d", c.MinBid, c.InitialBudget)
	}
	if c.TotalRounds <= 0 {
		return fmt.Errorf("total_rounds must be positive, got %d", c.TotalRounds)
	}
	for pos, limit := range c.PositionMaximums {
		if !pos.Valid() {
			return fmt.Errorf("position_maximums: unknown position %q", pos)
		}
		if limit < 0 {
			return fmt.Errorf("position_maximums[%s] must not be negative, got %d", pos, limit)
		}
	}
	return nil
}

// PositionMaximum returns the roster cap for pos. Positions without a configured cap
// are limited only by total rounds.
func (c Configuration) PositionMaximum(pos Position) int {
	if limit, ok := c.PositionMaximums[pos]; ok {
		return limit
	}
	return c.TotalRounds
}
