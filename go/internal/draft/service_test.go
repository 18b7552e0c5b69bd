package draft

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/mcdev12/auctiondraft/go/internal/models"
)

type testClients struct {
	nominate *connect.Client[NominateRequest, MutationResponse]
	bid      *connect.Client[BidRequest, MutationResponse]
	settle   *connect.Client[SettleRequest, MutationResponse]
	undo     *connect.Client[UndoPickRequest, MutationResponse]
	reset    *connect.Client[ResetRequest, MutationResponse]
	state    *connect.Client[GetDraftStateRequest, GetDraftStateResponse]
}

func newTestServer(t *testing.T) *testClients {
	t.Helper()
	env := newTestEnv(t, models.DefaultConfiguration())

	mux := http.NewServeMux()
	path, handler := NewDraftServiceHandler(NewService(env.app))
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	opt := connect.WithCodec(JSONCodec{})
	return &testClients{
		nominate: connect.NewClient[NominateRequest, MutationResponse](srv.Client(), srv.URL+NominateProcedure, opt),
		bid:      connect.NewClient[BidRequest, MutationResponse](srv.Client(), srv.URL+BidProcedure, opt),
		settle:   connect.NewClient[SettleRequest, MutationResponse](srv.Client(), srv.URL+SettleProcedure, opt),
		undo:     connect.NewClient[UndoPickRequest, MutationResponse](srv.Client(), srv.URL+UndoPickProcedure, opt),
		reset:    connect.NewClient[ResetRequest, MutationResponse](srv.Client(), srv.URL+ResetProcedure, opt),
		state:    connect.NewClient[GetDraftStateRequest, GetDraftStateResponse](srv.Client(), srv.URL+GetDraftStateProcedure, opt),
	}
}

func connectCode(t *testing.T, err error) (connect.Code, *connect.Error) {
	t.Helper()
	var ce *connect.Error
	if !errors.As(err, &ce) {
		t.Fatalf("error %v is not a connect error", err)
	}
	return ce.Code(), ce
}

// TestServiceMutationsReportVersion verifies each mutation returns the new version in
// the body and in the Draft-Version header.
func TestServiceMutationsReportVersion(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	res, err := c.nominate.CallUnary(ctx, connect.NewRequest(&NominateRequest{OwnerID: 1, PlayerID: 10, InitialBid: 5, ExpectedVersion: ver(1)}))
	if err != nil {
		t.Fatalf("Nominate: %v", err)
	}
	if res.Msg.Version != 2 || res.Header().Get(VersionHeader) != "2" {
		t.Fatalf("version = %d header %q, want 2", res.Msg.Version, res.Header().Get(VersionHeader))
	}
	if res.Msg.State.Nominated == nil || res.Msg.State.Nominated.PlayerID != 10 {
		t.Fatalf("state = %+v", res.Msg.State)
	}

	if _, err := c.bid.CallUnary(ctx, connect.NewRequest(&BidRequest{OwnerID: 2, Amount: 10, ExpectedVersion: ver(2)})); err != nil {
		t.Fatalf("Bid: %v", err)
	}
	settled, err := c.settle.CallUnary(ctx, connect.NewRequest(&SettleRequest{OwnerID: 2, PlayerID: 10, FinalPrice: 10, ExpectedVersion: ver(3)}))
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if settled.Msg.Pick == nil || settled.Msg.Pick.PickID != 1 {
		t.Fatalf("pick = %+v", settled.Msg.Pick)
	}

	undone, err := c.undo.CallUnary(ctx, connect.NewRequest(&UndoPickRequest{PickID: 1, ExpectedVersion: ver(4)}))
	if err != nil {
		t.Fatalf("UndoPick: %v", err)
	}
	if undone.Msg.Version != 5 {
		t.Fatalf("undo version = %d, want 5", undone.Msg.Version)
	}

	got, err := c.state.CallUnary(ctx, connect.NewRequest(&GetDraftStateRequest{}))
	if err != nil {
		t.Fatalf("GetDraftState: %v", err)
	}
	if got.Msg.Version != 5 || got.Msg.State.Team(2).BudgetRemaining != 200 {
		t.Fatalf("state = %+v", got.Msg)
	}
}

func TestServiceRequiresExpectedVersion(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	_, err := c.nominate.CallUnary(ctx, connect.NewRequest(&NominateRequest{OwnerID: 1, PlayerID: 10, InitialBid: 5}))
	if code, _ := connectCode(t, err); code != connect.CodeInvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", code)
	}

	_, err = c.reset.CallUnary(ctx, connect.NewRequest(&ResetRequest{}))
	if code, _ := connectCode(t, err); code != connect.CodeInvalidArgument {
		t.Fatalf("unforced reset code = %v, want InvalidArgument", code)
	}

	res, err := c.reset.CallUnary(ctx, connect.NewRequest(&ResetRequest{Force: true}))
	if err != nil {
		t.Fatalf("forced Reset: %v", err)
	}
	if res.Msg.Version != 1 {
		t.Fatalf("reset version = %d, want 1", res.Msg.Version)
	}
}

// TestServiceConflictCarriesCurrentVersion verifies a stale caller learns the
// authoritative version from the error metadata.
func TestServiceConflictCarriesCurrentVersion(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	if _, err := c.nominate.CallUnary(ctx, connect.NewRequest(&NominateRequest{OwnerID: 1, PlayerID: 10, InitialBid: 5, ExpectedVersion: ver(1)})); err != nil {
		t.Fatalf("Nominate: %v", err)
	}
	_, err := c.bid.CallUnary(ctx, connect.NewRequest(&BidRequest{OwnerID: 2, Amount: 6, ExpectedVersion: ver(1)}))
	code, ce := connectCode(t, err)
	if code != connect.CodeAborted {
		t.Fatalf("code = %v, want Aborted", code)
	}
	if got := ce.Meta().Get(VersionHeader); got != "2" {
		t.Fatalf("%s = %q, want 2", VersionHeader, got)
	}
	if got := ce.Meta().Get(ErrorCodeHeader); got != string(CodeVersionConflict) {
		t.Fatalf("%s = %q", ErrorCodeHeader, got)
	}
}

func TestServiceErrorCodes(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	_, err := c.settle.CallUnary(ctx, connect.NewRequest(&SettleRequest{OwnerID: 1, PlayerID: 10, FinalPrice: 1, ExpectedVersion: ver(1)}))
	if code, _ := connectCode(t, err); code != connect.CodeFailedPrecondition {
		t.Fatalf("settle while idle code = %v, want FailedPrecondition", code)
	}

	_, err = c.undo.CallUnary(ctx, connect.NewRequest(&UndoPickRequest{PickID: 9, ExpectedVersion: ver(1)}))
	if code, _ := connectCode(t, err); code != connect.CodeDataLoss {
		t.Fatalf("undo of unknown pick code = %v, want DataLoss", code)
	}

	_, err = c.nominate.CallUnary(ctx, connect.NewRequest(&NominateRequest{OwnerID: 8, PlayerID: 10, InitialBid: 1, ExpectedVersion: ver(1)}))
	if code, _ := connectCode(t, err); code != connect.CodeInvalidArgument {
		t.Fatalf("unknown owner code = %v, want InvalidArgument", code)
	}
}

func TestToConnectErrorPassesThroughUnknownErrors(t *testing.T) {
	err := toConnectError(errors.New("boom"))
	if connect.CodeOf(err) != connect.CodeInternal {
		t.Fatalf("code = %v, want Internal", connect.CodeOf(err))
	}
	err = toConnectError(persistence("failed to commit draft state", errors.New("disk full")))
	if connect.CodeOf(err) != connect.CodeUnavailable {
		t.Fatalf("code = %v, want Unavailable", connect.CodeOf(err))
	}
}
