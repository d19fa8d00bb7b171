package syncadapter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent []protocol.Request
	err  error
}

func (f *fakeTransport) Send(_ context.Context, req protocol.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeMirror struct {
	mu      sync.Mutex
	mode    models.Mode
	turn    int
	phase   models.PhaseState
	applied []protocol.Event
}

func (m *fakeMirror) Mode() models.Mode { return m.mode }

func (m *fakeMirror) TurnNumber() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn
}

func (m *fakeMirror) Phase() models.PhaseState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *fakeMirror) ApplyEvent(ev protocol.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, ev)
	switch e := ev.(type) {
	case protocol.TurnChanged:
		m.turn = e.TurnNumber
	case protocol.PhaseChanged:
		m.phase = e.State()
	case protocol.CombatStarted:
		m.phase = models.CombatPhase
	}
	return nil
}

func (m *fakeMirror) appliedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.applied)
}

type proposal struct {
	res Result
	err error
}

func proposeAsync(r *Remote, req protocol.Request) <-chan proposal {
	out := make(chan proposal, 1)
	go func() {
		res, err := r.Propose(context.Background(), req)
		out <- proposal{res, err}
	}()
	return out
}

func newRemote(t *testing.T) (*Remote, *fakeTransport, *fakeMirror, *bclock.Mock) {
	t.Helper()
	tr := &fakeTransport{}
	mirror := &fakeMirror{mode: models.ModeNetworked, turn: 1, phase: models.InitialPhase}
	mock := bclock.NewMock()
	r := NewRemote(tr, mirror, mock, 5*time.Second, nil)
	t.Cleanup(r.Close)
	return r, tr, mirror, mock
}

func TestRemoteWaitsForConfirmation(t *testing.T) {
	r, tr, mirror, _ := newRemote(t)

	done := proposeAsync(r, protocol.MarkReady{ID: "req-1", ParticipantID: "B"})
	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)

	select {
	case <-done:
		t.Fatal("proposal resolved before confirmation")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Zero(t, mirror.appliedCount())

	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.ParticipantReady{ParticipantID: "B"}))
	got := <-done
	require.NoError(t, got.err)
	assert.True(t, got.res.Accepted)
	assert.Equal(t, 1, mirror.appliedCount())
}

func TestRemoteMatchesByRequestID(t *testing.T) {
	r, tr, _, _ := newRemote(t)

	first := proposeAsync(r, protocol.EndTurn{ID: "a", ParticipantID: "B", TurnNumber: 1})
	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	second := proposeAsync(r, protocol.FinalizeSector{ID: "b", ParticipantID: "A"})
	require.Eventually(t, func() bool { return tr.count() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.PhaseChanged{
		RequestID: "b", Phase: models.PhasePreparation, Subphase: models.SubphaseZoneDefinition,
	}))
	got := <-second
	require.NoError(t, got.err)

	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.TurnEnded{ParticipantID: "B", TurnNumber: 1}))
	got = <-first
	require.NoError(t, got.err)
}

func TestRemoteRejection(t *testing.T) {
	r, tr, mirror, _ := newRemote(t)

	done := proposeAsync(r, protocol.StartCombat{ID: "req-2", ParticipantID: "B"})
	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.OperationRejected{
		RequestID: "req-2", Code: string(apperrors.CodeUnauthorizedAction), Reason: "unauthorized", Message: "director only",
	}))
	got := <-done
	require.Error(t, got.err)
	assert.True(t, apperrors.HasCode(got.err, apperrors.CodeRemoteRejected))
	assert.False(t, got.res.Accepted)
	assert.Equal(t, apperrors.CodeUnauthorizedAction, got.res.Code)
	assert.Zero(t, mirror.appliedCount())
}

func TestRemoteTimeout(t *testing.T) {
	r, tr, mirror, mock := newRemote(t)

	done := proposeAsync(r, protocol.EndTurn{ID: "req-3", ParticipantID: "B", TurnNumber: 1})
	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)

	var got proposal
	require.Eventually(t, func() bool {
		mock.Add(5 * time.Second)
		select {
		case got = <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.Error(t, got.err)
	assert.True(t, apperrors.HasCode(got.err, apperrors.CodeRemoteTimeout))
	assert.True(t, apperrors.IsRetryable(got.err))

	// A late confirmation still updates the mirror but resolves nothing.
	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.TurnEnded{ParticipantID: "B", TurnNumber: 1}))
	assert.Equal(t, 1, mirror.appliedCount())
}

func TestRemoteStaleGuard(t *testing.T) {
	r, _, mirror, _ := newRemote(t)
	mirror.turn = 2

	err := r.Deliver(models.ModeNetworked, protocol.TurnChanged{ActiveParticipantID: "B", TurnNumber: 0})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStaleRemoteEvent))

	err = r.Deliver(models.ModeNetworked, protocol.TurnEnded{ParticipantID: "B", TurnNumber: 1})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStaleRemoteEvent))

	err = r.Deliver(models.ModeLocal, protocol.CombatStarted{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStaleRemoteEvent))

	assert.Zero(t, mirror.appliedCount())
	assert.Equal(t, 2, mirror.TurnNumber())

	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.TurnChanged{ActiveParticipantID: "C", TurnNumber: 2}))
	assert.Equal(t, 1, mirror.appliedCount())
}

func TestRemotePhaseGuard(t *testing.T) {
	r, _, mirror, _ := newRemote(t)

	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.CombatStarted{}))
	require.Equal(t, models.CombatPhase, mirror.Phase())

	err := r.Deliver(models.ModeNetworked, protocol.PhaseChanged{
		Phase: models.PhasePreparation, Subphase: models.SubphaseSectorDefinition,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStaleRemoteEvent))
	err = r.Deliver(models.ModeNetworked, protocol.PhaseChanged{
		Phase: models.PhasePreparation, Subphase: models.SubphaseDeployment,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStaleRemoteEvent))

	assert.Equal(t, models.CombatPhase, mirror.Phase())
	assert.Equal(t, 1, mirror.appliedCount())

	// A repeated confirmation of the current phase is not stale.
	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.CombatStarted{}))
}

func TestRemoteForeignRequestIDDoesNotResolve(t *testing.T) {
	r, tr, mirror, _ := newRemote(t)

	done := proposeAsync(r, protocol.EndTurn{ID: "req-B", ParticipantID: "B", TurnNumber: 1})
	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)

	// The authority's clock ends the turn under its own id.
	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.TurnEnded{
		RequestID: "timeout-xyz", ParticipantID: "B", TurnNumber: 1, Forced: true,
	}))
	assert.Equal(t, 1, mirror.appliedCount())
	select {
	case <-done:
		t.Fatal("proposal resolved by another request's event")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, r.Deliver(models.ModeNetworked, protocol.OperationRejected{
		RequestID: "req-B", Code: string(apperrors.CodeUnauthorizedAction), Reason: "not_active_participant",
	}))
	got := <-done
	require.Error(t, got.err)
	assert.True(t, apperrors.HasCode(got.err, apperrors.CodeRemoteRejected))
	assert.False(t, got.res.Accepted)
	assert.Equal(t, "not_active_participant", got.res.Reason)
}

func TestRemoteSendFailure(t *testing.T) {
	r, tr, _, _ := newRemote(t)
	tr.err = errors.New("connection reset")

	_, err := r.Propose(context.Background(), protocol.EndTurn{ID: "x", ParticipantID: "B"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
}

func TestRemoteCloseFailsPending(t *testing.T) {
	r, tr, _, _ := newRemote(t)

	done := proposeAsync(r, protocol.EndTurn{ID: "y", ParticipantID: "B"})
	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	r.Close()

	got := <-done
	assert.True(t, apperrors.HasCode(got.err, apperrors.CodeTransport))

	_, err := r.Propose(context.Background(), protocol.EndTurn{ID: "z", ParticipantID: "B"})
	assert.Error(t, err)
}

type applierFunc func(protocol.Request) (Result, error)

func (f applierFunc) Apply(req protocol.Request) (Result, error) { return f(req) }

func TestLocalAppliesImmediately(t *testing.T) {
	var got protocol.Request
	l := NewLocal(applierFunc(func(req protocol.Request) (Result, error) {
		got = req
		return Result{Accepted: true}, nil
	}))

	res, err := l.Propose(context.Background(), protocol.StartCombat{ID: "1", ParticipantID: "A"})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, "A", got.Actor())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Propose(ctx, protocol.StartCombat{ID: "2"})
	assert.ErrorIs(t, err, context.Canceled)
}
