package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/auctiondraft/go/internal/draft"
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/draft/events"
	"github.com/mcdev12/auctiondraft/go/internal/models"
)

type fakeProvider struct {
	state   *models.DraftState
	players []models.Player
	owners  []models.Owner
	history []actionlog.Entry
}

func newFakeProvider() *fakeProvider {
	players := []models.Player{
		{ID: 10, FirstName: "Josh", LastName: "Allen", Team: "BUF", Position: models.PositionQB},
		{ID: 11, FirstName: "Bijan", LastName: "Robinson", Team: "ATL", Position: models.PositionRB},
		{ID: 12, FirstName: "Justin", LastName: "Tucker", Team: "BAL", Position: models.PositionK},
	}
	owners := []models.Owner{{ID: 1, OwnerName: "Alex", TeamName: "Blitz"}, {ID: 2, OwnerName: "Blair", TeamName: "Sacks"}}
	state := models.NewDraftState(models.DefaultConfiguration(), players, owners, 1)
	state.Nominated = &models.Nominated{PlayerID: 10, CurrentBid: 12, CurrentBidderID: 2, NominatingOwnerID: 1}
	state.Version = 4

	var history []actionlog.Entry
	for i := 1; i <= 4; i++ {
		history = append(history, actionlog.Entry{
			ID:        uuid.New(),
			Timestamp: time.Date(2026, 8, 30, 19, i, 0, 0, time.UTC),
			Version:   int64(i),
			Payload:   events.ResetPayload{Forced: true},
		})
	}
	return &fakeProvider{state: state, players: players, owners: owners, history: history}
}

func (p *fakeProvider) State(context.Context) (*models.DraftState, error) { return p.state, nil }

func (p *fakeProvider) AvailablePlayers(context.Context) ([]models.Player, error) {
	return append([]models.Player{}, p.players...), nil
}

func (p *fakeProvider) TeamRoster(_ context.Context, ownerID int) (*draft.TeamRoster, error) {
	o, err := p.Owner(ownerID)
	if err != nil {
		return nil, err
	}
	return &draft.TeamRoster{Owner: o, BudgetRemaining: 200, MaxBid: 200, OpenSlots: 15, Roster: []draft.RosterEntry{}}, nil
}

func (p *fakeProvider) History(context.Context) ([]actionlog.Entry, error) { return p.history, nil }
func (p *fakeProvider) Players() []models.Player                          { return p.players }
func (p *fakeProvider) Owners() []models.Owner                            { return p.owners }
func (p *fakeProvider) Configuration() models.Configuration               { return models.DefaultConfiguration() }

func (p *fakeProvider) Owner(id int) (models.Owner, error) {
	for _, o := range p.owners {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Owner{}, &draft.Error{Code: draft.CodeNotFound, Message: "owner not found"}
}

func serve(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewService(newFakeProvider()).Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestGetDraftStateExpandsNomination(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/v1/draft-state")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp DraftStateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != 4 || resp.PlayersLeft != 3 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Nomination == nil || resp.Nomination.DisplayName != "Allen, J." || resp.Nomination.CurrentBidder.TeamName != "Sacks" {
		t.Fatalf("nomination = %+v", resp.Nomination)
	}
	if resp.NextToNominate == nil || resp.NextToNominate.ID != 1 {
		t.Fatalf("next to nominate = %+v", resp.NextToNominate)
	}
}

// TestMutationsAreNotRouted verifies every write method is refused by the read-only
// surface.
func TestMutationsAreNotRouted(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		for _, path := range []string{"/api/v1/draft-state", "/api/v1/teams/1", "/api/v1/config"} {
			if rec := serve(t, method, path); rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("%s %s status = %d, want 405", method, path, rec.Code)
			}
		}
	}
	if rec := serve(t, http.MethodPost, "/api/v1/draft/10"); rec.Code != http.StatusNotFound {
		t.Fatalf("POST /api/v1/draft/10 status = %d, want 404", rec.Code)
	}
}

func TestGetOwnerAndTeam(t *testing.T) {
	if rec := serve(t, http.MethodGet, "/api/v1/owners/2"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"team_name":"Sacks"`) {
		t.Fatalf("owner 2: %d %s", rec.Code, rec.Body)
	}
	if rec := serve(t, http.MethodGet, "/api/v1/owners/9"); rec.Code != http.StatusNotFound {
		t.Fatalf("owner 9 status = %d, want 404", rec.Code)
	}
	if rec := serve(t, http.MethodGet, "/api/v1/owners/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("owner abc status = %d, want 400", rec.Code)
	}
	if rec := serve(t, http.MethodGet, "/api/v1/teams/1"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"max_bid":200`) {
		t.Fatalf("team 1: %d %s", rec.Code, rec.Body)
	}
}

func TestAvailablePlayersPositionFilter(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/v1/players/available?position=k")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var players []models.Player
	if err := json.NewDecoder(rec.Body).Decode(&players); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(players) != 1 || players[0].ID != 12 {
		t.Fatalf("players = %+v", players)
	}
	if rec := serve(t, http.MethodGet, "/api/v1/players/available?position=LB"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad position status = %d, want 400", rec.Code)
	}
}

func TestHistoryLimit(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/v1/history?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []actionlog.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].Version != 3 || entries[1].Version != 4 {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestCORSPreflightOffersOnlyReads(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/draft-state", nil)
	req.Header.Set("Origin", "https://league.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	NewService(newFakeProvider()).Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); strings.Contains(got, http.MethodPost) {
		t.Fatalf("preflight allowed POST: %q", got)
	}
}
