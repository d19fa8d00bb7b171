package syncadapter

import (
	"context"
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

// DefaultTimeout bounds how long a proposal waits for its confirmation.
const DefaultTimeout = 10 * time.Second

// Transport carries requests to the authority.
type Transport interface {
	Send(ctx context.Context, req protocol.Request) error
}

// Mirror is the local read model that confirmed events are applied to.
type Mirror interface {
	Mode() models.Mode
	TurnNumber() int
	Phase() models.PhaseState
	ApplyEvent(ev protocol.Event) error
}

type reply struct {
	result Result
	err    error
}

type pendingRequest struct {
	req  protocol.Request
	done chan reply
}

// Remote proposes operations to a remote authority. Nothing is applied
// locally until the matching confirmation arrives through Deliver.
type Remote struct {
	transport Transport
	mirror    Mirror
	clk       bclock.Clock
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingRequest
	order   []string
	closed  bool
}

// NewRemote builds a remote adapter. A zero timeout uses DefaultTimeout.
func NewRemote(transport Transport, mirror Mirror, clk bclock.Clock, timeout time.Duration, logger *zap.Logger) *Remote {
	if clk == nil {
		clk = bclock.New()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{
		transport: transport,
		mirror:    mirror,
		clk:       clk,
		timeout:   timeout,
		logger:    logger,
		pending:   make(map[string]*pendingRequest),
	}
}

// Propose sends req and blocks until the authority confirms or rejects it,
// the timeout elapses, or ctx is done.
func (r *Remote) Propose(ctx context.Context, req protocol.Request) (Result, error) {
	ctx, span := otel.Tracer("wargame-turns/syncadapter").Start(ctx, "Remote.Propose")
	defer span.End()
	span.SetAttributes(attribute.String("request.kind", req.Kind()), attribute.String("request.id", req.RequestID()))

	res, err := r.propose(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (r *Remote) propose(ctx context.Context, req protocol.Request) (Result, error) {
	id := req.RequestID()
	if id == "" {
		return Result{}, apperrors.New(apperrors.CodeTransport, "request has no id")
	}

	p := &pendingRequest{req: req, done: make(chan reply, 1)}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Result{}, apperrors.New(apperrors.CodeTransport, "adapter closed")
	}
	r.pending[id] = p
	r.order = append(r.order, id)
	r.mu.Unlock()

	if err := r.transport.Send(ctx, req); err != nil {
		r.forget(id)
		return Result{}, apperrors.Wrap(apperrors.CodeTransport, "send "+req.Kind(), err)
	}

	timer := r.clk.Timer(r.timeout)
	defer timer.Stop()

	select {
	case rep := <-p.done:
		return rep.result, rep.err
	case <-timer.C:
		r.forget(id)
		r.logger.Debug("proposal timed out", zap.String("kind", req.Kind()), zap.String("request", id))
		return Result{}, apperrors.WithMetadata(apperrors.CodeRemoteTimeout, "no confirmation for "+req.Kind(),
			map[string]string{"requestId": id})
	case <-ctx.Done():
		r.forget(id)
		return Result{}, ctx.Err()
	}
}

func (r *Remote) forget(id string) *pendingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.takeLocked(id)
}

func (r *Remote) takeLocked(id string) *pendingRequest {
	p, ok := r.pending[id]
	if !ok {
		return nil
	}
	delete(r.pending, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p
}

// Deliver feeds an inbound event. Events for another mode or an older turn
// are dropped and reported as stale. Confirmations are applied to the
// mirror before the matching proposal is released.
func (r *Remote) Deliver(mode models.Mode, ev protocol.Event) error {
	if err := r.checkStale(mode, ev); err != nil {
		r.logger.Debug("dropping stale event", zap.String("kind", ev.Kind()), zap.Error(err))
		return err
	}

	if rej, ok := ev.(protocol.OperationRejected); ok {
		r.resolve(ev, reply{
			result: Result{Code: apperrors.Code(rej.Code), Reason: rej.Reason, Message: rej.Message},
			err: apperrors.WithMetadata(apperrors.CodeRemoteRejected, rej.Message,
				map[string]string{"code": rej.Code, "reason": rej.Reason}),
		})
		return nil
	}

	applyErr := r.mirror.ApplyEvent(ev)
	if applyErr != nil {
		r.logger.Warn("mirror rejected confirmed event", zap.String("kind", ev.Kind()), zap.Error(applyErr))
	}
	r.resolve(ev, reply{result: Result{Accepted: applyErr == nil}, err: applyErr})
	return applyErr
}

func (r *Remote) checkStale(mode models.Mode, ev protocol.Event) error {
	if mode != r.mirror.Mode() {
		return apperrors.WithMetadata(apperrors.CodeStaleRemoteEvent, "event for another session mode",
			map[string]string{"mode": string(mode)})
	}
	turn := -1
	var target models.PhaseState
	switch e := ev.(type) {
	case protocol.TurnChanged:
		turn = e.TurnNumber
	case protocol.TurnEnded:
		turn = e.TurnNumber
	case protocol.PhaseChanged:
		target = e.State()
	case protocol.CombatStarted:
		target = models.CombatPhase
	}
	if turn >= 0 && turn < r.mirror.TurnNumber() {
		return apperrors.Newf(apperrors.CodeStaleRemoteEvent, "event for turn %d is behind turn %d", turn, r.mirror.TurnNumber())
	}
	// Phases only move forward.
	if current := r.mirror.Phase(); target.Before(current) {
		return apperrors.Newf(apperrors.CodeStaleRemoteEvent, "event for %s is behind %s", target, current)
	}
	return nil
}

func (r *Remote) resolve(ev protocol.Event, rep reply) {
	r.mu.Lock()
	p := r.takeLocked(ev.CorrelationID())
	// Content matching only covers uncorrelated events. An event carrying
	// another request's id, such as a forced turn end, never releases a
	// proposal that is still waiting on its own answer.
	if p == nil && ev.CorrelationID() == "" {
		for _, id := range r.order {
			if confirms(r.pending[id].req, ev) {
				p = r.takeLocked(id)
				break
			}
		}
	}
	r.mu.Unlock()

	if p != nil {
		p.done <- rep
	}
}

// confirms matches an uncorrelated event against a pending request.
func confirms(req protocol.Request, ev protocol.Event) bool {
	switch e := ev.(type) {
	case protocol.TurnEnded:
		r, ok := req.(protocol.EndTurn)
		return ok && r.ParticipantID == e.ParticipantID
	case protocol.ParticipantReady:
		r, ok := req.(protocol.MarkReady)
		return ok && r.ParticipantID == e.ParticipantID
	case protocol.CombatStarted:
		_, ok := req.(protocol.StartCombat)
		return ok
	case protocol.PhaseChanged:
		switch req.(type) {
		case protocol.FinalizeSector:
			return e.Subphase == models.SubphaseZoneDefinition
		case protocol.FinalizeZones:
			return e.Subphase == models.SubphaseDeployment
		}
	}
	return false
}

// Close fails every pending proposal and refuses new ones.
func (r *Remote) Close() {
	r.mu.Lock()
	r.closed = true
	pending := r.pending
	r.pending = make(map[string]*pendingRequest)
	r.order = nil
	r.mu.Unlock()

	for _, p := range pending {
		p.done <- reply{err: apperrors.New(apperrors.CodeTransport, "adapter closed")}
	}
}

// Dispose implements the session lifecycle.
func (r *Remote) Dispose() {
	r.Close()
}
