package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"github.com/mcdev12/auctiondraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// DraftServiceName is the fully-qualified name of the read-write draft service.
	DraftServiceName = "draft.v1.DraftService"

	NominateProcedure         = "/draft.v1.DraftService/Nominate"
	BidProcedure              = "/draft.v1.DraftService/Bid"
	SettleProcedure           = "/draft.v1.DraftService/Settle"
	CancelNominationProcedure = "/draft.v1.DraftService/CancelNomination"
	UndoPickProcedure         = "/draft.v1.DraftService/UndoPick"
	DirectAssignProcedure     = "/draft.v1.DraftService/DirectAssign"
	ResetProcedure            = "/draft.v1.DraftService/Reset"
	GetDraftStateProcedure    = "/draft.v1.DraftService/GetDraftState"

	// VersionHeader carries the state version on responses and on conflict errors.
	VersionHeader = "Draft-Version"
	// ErrorCodeHeader carries the engine error code on failures.
	ErrorCodeHeader = "Draft-Error-Code"
)

// DraftApp defines what the service layer needs from the draft application
type DraftApp interface {
	Nominate(ctx context.Context, req NominateRequest) (*Result, error)
	Bid(ctx context.Context, req BidRequest) (*Result, error)
	Settle(ctx context.Context, req SettleRequest) (*Result, error)
	CancelNomination(ctx context.Context, req CancelNominationRequest) (*Result, error)
	UndoPick(ctx context.Context, req UndoPickRequest) (*Result, error)
	DirectAssign(ctx context.Context, req DirectAssignRequest) (*Result, error)
	Reset(ctx context.Context, req ResetRequest) (*Result, error)
	State(ctx context.Context) (*models.DraftState, error)
}

// MutationResponse is returned by every mutating procedure
type MutationResponse struct {
	Version           int64              `json:"version"`
	State             *models.DraftState `json:"state"`
	Pick              *models.DraftPick  `json:"pick,omitempty"`
	CancelledPlayerID *int               `json:"cancelled_player_id,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
}

// GetDraftStateRequest asks for the current state
type GetDraftStateRequest struct{}

// GetDraftStateResponse carries the current state
type GetDraftStateResponse struct {
	Version int64              `json:"version"`
	State   *models.DraftState `json:"state"`
}

// Service implements the read-write DraftService
type Service struct {
	draftApp DraftApp
}

// NewService creates a new draft service
func NewService(draftApp DraftApp) *Service {
	return &Service{draftApp: draftApp}
}

// NewDraftServiceHandler builds an HTTP handler for every procedure and returns the path
// prefix to mount it on.
func NewDraftServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(loggingInterceptor()),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(NominateProcedure, connect.NewUnaryHandler(NominateProcedure, svc.Nominate, opts...))
	mux.Handle(BidProcedure, connect.NewUnaryHandler(BidProcedure, svc.Bid, opts...))
	mux.Handle(SettleProcedure, connect.NewUnaryHandler(SettleProcedure, svc.Settle, opts...))
	mux.Handle(CancelNominationProcedure, connect.NewUnaryHandler(CancelNominationProcedure, svc.CancelNomination, opts...))
	mux.Handle(UndoPickProcedure, connect.NewUnaryHandler(UndoPickProcedure, svc.UndoPick, opts...))
	mux.Handle(DirectAssignProcedure, connect.NewUnaryHandler(DirectAssignProcedure, svc.DirectAssign, opts...))
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, svc.Reset, opts...))
	mux.Handle(GetDraftStateProcedure, connect.NewUnaryHandler(GetDraftStateProcedure, svc.GetDraftState, opts...))
	return "/" + DraftServiceName + "/", mux
}

// Nominate opens an auction
func (s *Service) Nominate(ctx context.Context, req *connect.Request[NominateRequest]) (*connect.Response[MutationResponse], error) {
	if err := requireVersion(req.Msg.ExpectedVersion); err != nil {
		return nil, err
	}
	res, err := s.draftApp.Nominate(ctx, *req.Msg)
	return mutationResponse(res, err)
}

// Bid raises the current bid
func (s *Service) Bid(ctx context.Context, req *connect.Request[BidRequest]) (*connect.Response[MutationResponse], error) {
	if err := requireVersion(req.Msg.ExpectedVersion); err != nil {
		return nil, err
	}
	res, err := s.draftApp.Bid(ctx, *req.Msg)
	return mutationResponse(res, err)
}

// Settle awards the nominated player
func (s *Service) Settle(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[MutationResponse], error) {
	if err := requireVersion(req.Msg.ExpectedVersion); err != nil {
		return nil, err
	}
	res, err := s.draftApp.Settle(ctx, *req.Msg)
	return mutationResponse(res, err)
}

// CancelNomination abandons the active auction
func (s *Service) CancelNomination(ctx context.Context, req *connect.Request[CancelNominationRequest]) (*connect.Response[MutationResponse], error) {
	if err := requireVersion(req.Msg.ExpectedVersion); err != nil {
		return nil, err
	}
	res, err := s.draftApp.CancelNomination(ctx, *req.Msg)
	return mutationResponse(res, err)
}

// UndoPick reverses a pick by id
func (s *Service) UndoPick(ctx context.Context, req *connect.Request[UndoPickRequest]) (*connect.Response[MutationResponse], error) {
	if req.Msg.PickID <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("pick_id is required"))
	}
	if err := requireVersion(req.Msg.ExpectedVersion); err != nil {
		return nil, err
	}
	res, err := s.draftApp.UndoPick(ctx, *req.Msg)
	return mutationResponse(res, err)
}

// DirectAssign places a player without an auction
func (s *Service) DirectAssign(ctx context.Context, req *connect.Request[DirectAssignRequest]) (*connect.Response[MutationResponse], error) {
	if err := requireVersion(req.Msg.ExpectedVersion); err != nil {
		return nil, err
	}
	res, err := s.draftApp.DirectAssign(ctx, *req.Msg)
	return mutationResponse(res, err)
}

// Reset reinitializes the draft. A forced reset needs no expected version.
func (s *Service) Reset(ctx context.Context, req *connect.Request[ResetRequest]) (*connect.Response[MutationResponse], error) {
	if !req.Msg.Force {
		if err := requireVersion(req.Msg.ExpectedVersion); err != nil {
			return nil, err
		}
	}
	res, err := s.draftApp.Reset(ctx, *req.Msg)
	return mutationResponse(res, err)
}

// GetDraftState returns the current state
func (s *Service) GetDraftState(ctx context.Context, _ *connect.Request[GetDraftStateRequest]) (*connect.Response[GetDraftStateResponse], error) {
	state, err := s.draftApp.State(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := connect.NewResponse(&GetDraftStateResponse{Version: state.Version, State: state})
	resp.Header().Set(VersionHeader, strconv.FormatInt(state.Version, 10))
	return resp, nil
}

func requireVersion(v *int64) error {
	if v == nil {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("expected_version is required"))
	}
	return nil
}

func mutationResponse(res *Result, err error) (*connect.Response[MutationResponse], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := connect.NewResponse(&MutationResponse{
		Version:           res.Version,
		State:             res.State,
		Pick:              res.Pick,
		CancelledPlayerID: res.CancelledPlayerID,
		Warnings:          res.Warnings,
	})
	resp.Header().Set(VersionHeader, strconv.FormatInt(res.Version, 10))
	return resp, nil
}

// toConnectError maps engine error codes onto Connect codes.
func toConnectError(err error) error {
	var de *Error
	if !errors.As(err, &de) {
		return connect.NewError(connect.CodeInternal, err)
	}

	code := connect.CodeInternal
	switch de.Code {
	case CodeMalformedInput:
		code = connect.CodeInvalidArgument
	case CodeVersionConflict:
		code = connect.CodeAborted
	case CodeBusinessRule:
		code = connect.CodeFailedPrecondition
	case CodeDataIntegrity:
		code = connect.CodeDataLoss
	case CodePersistence:
		code = connect.CodeUnavailable
	case CodeNotFound:
		code = connect.CodeNotFound
	}

	cerr := connect.NewError(code, err)
	cerr.Meta().Set(ErrorCodeHeader, string(de.Code))
	if de.Code == CodeVersionConflict {
		cerr.Meta().Set(VersionHeader, strconv.FormatInt(de.CurrentVersion, 10))
	}
	return cerr
}

func loggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err).Str("code", connect.CodeOf(err).String())
			}
			ev.Str("procedure", req.Spec().Procedure).
				Dur("duration", time.Since(start)).
				Msg("draft rpc handled")
			return res, err
		}
	}
}

// JSONCodec lets Connect carry plain Go structs as JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
