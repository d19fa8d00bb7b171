// Package syncadapter mediates state-changing operations between a
// session and its authority. Local applies them in process; Remote sends
// them to a remote authority and waits for the confirmation.
package syncadapter

import (
	"context"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

// Result is the authority's verdict on a proposal.
type Result struct {
	Accepted bool
	Code     apperrors.Code
	Reason   string
	Message  string
}

// Proposer submits an operation to whichever side is authoritative.
type Proposer interface {
	Propose(ctx context.Context, req protocol.Request) (Result, error)
}

// Applier executes a request against authoritative state.
type Applier interface {
	Apply(req protocol.Request) (Result, error)
}

// Local applies every proposal synchronously.
type Local struct {
	applier Applier
}

// NewLocal returns an adapter that applies proposals through applier.
func NewLocal(applier Applier) *Local {
	return &Local{applier: applier}
}

// Propose applies req immediately.
func (l *Local) Propose(ctx context.Context, req protocol.Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return l.applier.Apply(req)
}
