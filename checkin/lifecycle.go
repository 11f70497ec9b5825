package checkin

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"attendance-backend/models"
	"attendance-backend/store"
)

// SessionSource is the slice of the session store the lifecycle manager and
// coordinator need.
type SessionSource interface {
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	GetByNumber(ctx context.Context, number int) (*models.Session, error)
	GetByAccessCode(ctx context.Context, code string) (*models.Session, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.Session, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// Lifecycle derives and enforces a session's active state from wall-clock
// time. The stored is_active flag is a cache of "the window has not closed";
// every read through here corrects it when stale.
type Lifecycle struct {
	sessions SessionSource
	now      func() time.Time
	log      *zap.Logger
}

func NewLifecycle(sessions SessionSource, log *zap.Logger) *Lifecycle {
	return &Lifecycle{sessions: sessions, now: time.Now, log: log}
}

// Resolve looks a session up by a polymorphic reference. A numeric ref is
// tried as internal id, then as session number; anything else, or a numeric
// ref matching neither, is treated as an access code. The resolved session is
// reconciled before it is returned.
func (l *Lifecycle) Resolve(ctx context.Context, ref string) (*models.Session, error) {
	session, err := l.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	return l.Reconcile(ctx, session)
}

func (l *Lifecycle) lookup(ctx context.Context, ref string) (*models.Session, error) {
	if numeric, err := strconv.ParseInt(ref, 10, 64); err == nil {
		session, err := l.sessions.GetByID(ctx, numeric)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}

		session, err = l.sessions.GetByNumber(ctx, int(numeric))
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}
	}

	session, err := l.sessions.GetByAccessCode(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// WindowOpen reports whether now falls inside the session's time window,
// inclusive at both ends.
func WindowOpen(session *models.Session, now time.Time) bool {
	return !now.Before(session.StartTime) && !now.After(session.EndTime)
}

// Reconcile writes is_active=false back to the store when the session's
// window has closed but the flag is still set, and returns the corrected
// session. Sessions that are already consistent pass through unchanged.
func (l *Lifecycle) Reconcile(ctx context.Context, session *models.Session) (*models.Session, error) {
	if !session.IsActive || !l.now().After(session.EndTime) {
		return session, nil
	}

	updated, err := l.sessions.SetActive(ctx, session.ID, false)
	if err != nil {
		return nil, err
	}

	l.log.Info("deactivated expired session",
		zap.Int64("session_id", session.ID),
		zap.Int("session_number", session.SessionNumber),
		zap.Time("end_time", session.EndTime))

	// SetActive returns the row without the derived count.
	updated.AttendeeCount = session.AttendeeCount
	return updated, nil
}

// ReconcileAll expires every stale-active session in one statement. Callers
// run this before list and aggregate reads so stale flags never leak into
// counts.
func (l *Lifecycle) ReconcileAll(ctx context.Context) (int64, error) {
	expired, err := l.sessions.DeactivateExpired(ctx, l.now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		l.log.Info("deactivated expired sessions", zap.Int64("count", expired))
	}
	return expired, nil
}
