package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendance-backend/models"
)

func newTestLifecycle(sessions *fakeSessions, now time.Time) *Lifecycle {
	lifecycle := NewLifecycle(sessions, zap.NewNop())
	lifecycle.now = func() time.Time { return now }
	return lifecycle
}

func TestWindowOpenBounds(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	session := &models.Session{StartTime: start, EndTime: start.Add(30 * time.Minute)}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Second), false},
		{"at start", start, true},
		{"inside window", start.Add(15 * time.Minute), true},
		{"at end", start.Add(30 * time.Minute), true},
		{"after end", start.Add(30*time.Minute + time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowOpen(session, tt.now))
		})
	}
}

func TestResolveTriesIDThenNumberThenAccessCode(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	// Session ids and numbers deliberately collide so the lookup order is
	// observable: ref "3" matches byID's id before byNumber's number.
	byID := &models.Session{ID: 3, SessionNumber: 8, AccessCode: "code-a", StartTime: now, EndTime: later}
	byNumber := &models.Session{ID: 9, SessionNumber: 3, AccessCode: "code-b", StartTime: now, EndTime: later}
	byCode := &models.Session{ID: 4, SessionNumber: 12, AccessCode: "77faketoken", StartTime: now, EndTime: later}

	sessions := newFakeSessions(byID, byNumber, byCode)
	lifecycle := newTestLifecycle(sessions, now)

	resolved, err := lifecycle.Resolve(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), resolved.ID)

	resolved, err = lifecycle.Resolve(context.Background(), "8")
	require.NoError(t, err)
	assert.Equal(t, int64(3), resolved.ID, "numeric ref falls through to session number")

	resolved, err = lifecycle.Resolve(context.Background(), "77faketoken")
	require.NoError(t, err)
	assert.Equal(t, int64(4), resolved.ID, "non-numeric ref resolves as access code")

	resolved, err = lifecycle.Resolve(context.Background(), "code-b")
	require.NoError(t, err)
	assert.Equal(t, int64(9), resolved.ID)

	_, err = lifecycle.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveReturnsSameSessionForEveryReference(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	session := &models.Session{
		ID:            21,
		SessionNumber: 7,
		Date:          "2026-09-01",
		AccessCode:    "deadbeef0001",
		StartTime:     now,
		EndTime:       now.Add(time.Hour),
		IsActive:      true,
	}
	lifecycle := newTestLifecycle(newFakeSessions(session), now)

	byID, err := lifecycle.Resolve(context.Background(), "21")
	require.NoError(t, err)
	byNumber, err := lifecycle.Resolve(context.Background(), "7")
	require.NoError(t, err)
	byCode, err := lifecycle.Resolve(context.Background(), "deadbeef0001")
	require.NoError(t, err)

	assert.Equal(t, byID, byNumber)
	assert.Equal(t, byID, byCode)
}

func TestResolveReconcilesStaleActiveFlag(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	session := testSession(start)
	sessions := newFakeSessions(session)

	lifecycle := newTestLifecycle(sessions, start.Add(time.Hour))

	resolved, err := lifecycle.Resolve(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, resolved.IsActive)
	assert.False(t, sessions.stored(1).IsActive, "correction must be persisted")
	assert.Equal(t, 1, sessions.setActiveCalls)
}

func TestReconcileLeavesConsistentSessionsAlone(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	sessions := newFakeSessions(testSession(start))

	lifecycle := newTestLifecycle(sessions, start.Add(5*time.Minute))

	resolved, err := lifecycle.Resolve(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, resolved.IsActive)
	assert.Equal(t, 0, sessions.setActiveCalls)

	// Already-inactive expired sessions are not rewritten either.
	inactive := testSession(start)
	inactive.ID = 2
	inactive.SessionNumber = 6
	inactive.AccessCode = "other-code"
	inactive.IsActive = false
	sessions = newFakeSessions(inactive)
	lifecycle = newTestLifecycle(sessions, start.Add(time.Hour))

	resolved, err = lifecycle.Resolve(context.Background(), "2")
	require.NoError(t, err)
	assert.False(t, resolved.IsActive)
	assert.Equal(t, 0, sessions.setActiveCalls)
}

func TestReconcileAllExpiresOnlyStaleSessions(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	expired1 := testSession(start)
	expired2 := testSession(start)
	expired2.ID = 2
	expired2.SessionNumber = 6
	expired2.AccessCode = "code-two"
	current := testSession(start)
	current.ID = 3
	current.SessionNumber = 7
	current.AccessCode = "code-three"
	current.EndTime = start.Add(2 * time.Hour)
	alreadyOff := testSession(start)
	alreadyOff.ID = 4
	alreadyOff.SessionNumber = 8
	alreadyOff.AccessCode = "code-four"
	alreadyOff.IsActive = false

	sessions := newFakeSessions(expired1, expired2, current, alreadyOff)
	lifecycle := newTestLifecycle(sessions, start.Add(time.Hour))

	count, err := lifecycle.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.False(t, sessions.stored(1).IsActive)
	assert.False(t, sessions.stored(2).IsActive)
	assert.True(t, sessions.stored(3).IsActive)
}
