package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mcdev12/auctiondraft/go/internal/draft"
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// StateProvider is everything the read-only surface may ask of the engine. It has no
// mutators, so nothing routed here can change the draft.
type StateProvider interface {
	State(ctx context.Context) (*models.DraftState, error)
	AvailablePlayers(ctx context.Context) ([]models.Player, error)
	TeamRoster(ctx context.Context, ownerID int) (*draft.TeamRoster, error)
	History(ctx context.Context) ([]actionlog.Entry, error)
	Players() []models.Player
	Owners() []models.Owner
	Owner(id int) (models.Owner, error)
	Configuration() models.Configuration
}

// DraftStateResponse represents the complete state of the draft
type DraftStateResponse struct {
	Version        int64              `json:"version"`
	Nomination     *NominationInfo    `json:"nomination,omitempty"`
	NextToNominate *models.Owner      `json:"next_to_nominate,omitempty"`
	PicksMade      int                `json:"picks_made"`
	PlayersLeft    int                `json:"players_left"`
	State          *models.DraftState `json:"state"`
}

// NominationInfo represents the auction currently on the block
type NominationInfo struct {
	Player          models.Player `json:"player"`
	DisplayName     string        `json:"display_name"`
	CurrentBid      int           `json:"current_bid"`
	CurrentBidder   models.Owner  `json:"current_bidder"`
	NominatingOwner models.Owner  `json:"nominating_owner"`
}

// StateHandler handles HTTP requests for draft state
type StateHandler struct {
	stateProvider StateProvider
	players       models.PlayerIndex
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider) *StateHandler {
	players := make(models.PlayerIndex, len(provider.Players()))
	for _, p := range provider.Players() {
		players[p.ID] = p
	}
	return &StateHandler{stateProvider: provider, players: players}
}

// RegisterStateRoutes registers the read-only routes. Only GET (and the implied HEAD) is
// routed; other methods get 405 from the mux.
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/draft-state", h.HandleGetDraftState)
	mux.HandleFunc("GET /api/v1/players", h.HandleGetPlayers)
	mux.HandleFunc("GET /api/v1/players/available", h.HandleGetAvailablePlayers)
	mux.HandleFunc("GET /api/v1/owners", h.HandleGetOwners)
	mux.HandleFunc("GET /api/v1/owners/{id}", h.HandleGetOwner)
	mux.HandleFunc("GET /api/v1/teams/{owner_id}", h.HandleGetTeam)
	mux.HandleFunc("GET /api/v1/config", h.HandleGetConfig)
	mux.HandleFunc("GET /api/v1/history", h.HandleGetHistory)
}

// HandleGetDraftState handles GET /api/v1/draft-state
func (h *StateHandler) HandleGetDraftState(w http.ResponseWriter, r *http.Request) {
	state, err := h.stateProvider.State(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to get draft state")
		return
	}

	resp := &DraftStateResponse{
		Version:     state.Version,
		PlayersLeft: len(state.AvailablePlayerIDs),
		State:       state,
	}
	for _, t := range state.Teams {
		resp.PicksMade += len(t.Picks)
	}
	if o, err := h.stateProvider.Owner(state.OwnerIDNextToNominate); err == nil {
		resp.NextToNominate = &o
	}
	if n := state.Nominated; n != nil {
		info := &NominationInfo{
			Player:     h.players[n.PlayerID],
			CurrentBid: n.CurrentBid,
		}
		info.DisplayName = info.Player.DisplayName()
		info.CurrentBidder, _ = h.stateProvider.Owner(n.CurrentBidderID)
		info.NominatingOwner, _ = h.stateProvider.Owner(n.NominatingOwnerID)
		resp.Nomination = info
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGetPlayers handles GET /api/v1/players
func (h *StateHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stateProvider.Players())
}

// HandleGetAvailablePlayers handles GET /api/v1/players/available, optionally filtered
// by ?position=
func (h *StateHandler) HandleGetAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.stateProvider.AvailablePlayers(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to get available players")
		return
	}

	if raw := r.URL.Query().Get("position"); raw != "" {
		pos, err := models.ParsePosition(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filtered := players[:0]
		for _, p := range players {
			if p.Position == pos {
				filtered = append(filtered, p)
			}
		}
		players = filtered
	}

	writeJSON(w, http.StatusOK, players)
}

// HandleGetOwners handles GET /api/v1/owners
func (h *StateHandler) HandleGetOwners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stateProvider.Owners())
}

// HandleGetOwner handles GET /api/v1/owners/{id}
func (h *StateHandler) HandleGetOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	owner, err := h.stateProvider.Owner(id)
	if err != nil {
		h.writeError(w, err, "failed to get owner")
		return
	}
	writeJSON(w, http.StatusOK, owner)
}

// HandleGetTeam handles GET /api/v1/teams/{owner_id}
func (h *StateHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "owner_id")
	if !ok {
		return
	}
	roster, err := h.stateProvider.TeamRoster(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to get team")
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// HandleGetConfig handles GET /api/v1/config
func (h *StateHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stateProvider.Configuration())
}

// HandleGetHistory handles GET /api/v1/history, optionally limited to the last ?limit=
// entries
func (h *StateHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stateProvider.History(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to get history")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *StateHandler) writeError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, draft.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, draft.ErrPersistence):
		status = http.StatusServiceUnavailable
	}
	if status != http.StatusNotFound {
		log.Error().Err(err).Msg(msg)
	}
	http.Error(w, err.Error(), status)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
