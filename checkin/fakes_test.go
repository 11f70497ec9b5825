package checkin

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"attendance-backend/models"
	"attendance-backend/store"
)

type fakeSessions struct {
	mu             sync.Mutex
	sessions       map[int64]*models.Session
	setActiveCalls int
}

func newFakeSessions(sessions ...*models.Session) *fakeSessions {
	f := &fakeSessions{sessions: make(map[int64]*models.Session)}
	for _, s := range sessions {
		copied := *s
		f.sessions[s.ID] = &copied
	}
	return f
}

func (f *fakeSessions) GetByID(_ context.Context, id int64) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, store.ErrSessionNotFound
}

func (f *fakeSessions) GetByNumber(_ context.Context, number int) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.SessionNumber == number {
			copied := *s
			return &copied, nil
		}
	}
	return nil, store.ErrSessionNotFound
}

func (f *fakeSessions) GetByAccessCode(_ context.Context, code string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.AccessCode == code {
			copied := *s
			return &copied, nil
		}
	}
	return nil, store.ErrSessionNotFound
}

func (f *fakeSessions) SetActive(_ context.Context, id int64, active bool) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setActiveCalls++
	s, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	s.IsActive = active
	copied := *s
	copied.AttendeeCount = 0
	return &copied, nil
}

func (f *fakeSessions) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired int64
	for _, s := range f.sessions {
		if s.IsActive && s.EndTime.Before(now) {
			s.IsActive = false
			expired++
		}
	}
	return expired, nil
}

func (f *fakeSessions) stored(id int64) *models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *f.sessions[id]
	return &copied
}

// fakeAttendances enforces the same (lower(wallet), session) uniqueness the
// real unique index provides, atomically under a mutex, so concurrency tests
// exercise the lost-race path.
type fakeAttendances struct {
	mu   sync.Mutex
	rows map[string]models.Attendance
}

func newFakeAttendances() *fakeAttendances {
	return &fakeAttendances{rows: make(map[string]models.Attendance)}
}

func attendanceKey(wallet string, sessionID int64) string {
	return fmt.Sprintf("%s/%d", strings.ToLower(wallet), sessionID)
}

func (f *fakeAttendances) Exists(_ context.Context, wallet string, sessionID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[attendanceKey(wallet, sessionID)]
	return ok, nil
}

func (f *fakeAttendances) Insert(_ context.Context, att *models.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := attendanceKey(att.WalletAddress, att.SessionID)
	if _, ok := f.rows[key]; ok {
		return store.ErrDuplicateAttendance
	}
	att.CreatedAt = time.Now()
	f.rows[key] = *att
	return nil
}

func (f *fakeAttendances) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeAdmins struct {
	wallets map[string]bool
}

func newFakeAdmins(wallets ...string) *fakeAdmins {
	f := &fakeAdmins{wallets: make(map[string]bool)}
	for _, w := range wallets {
		f.wallets[strings.ToLower(w)] = true
	}
	return f
}

func (f *fakeAdmins) IsAdmin(_ context.Context, wallet string) (bool, error) {
	return f.wallets[strings.ToLower(wallet)], nil
}

type fakeLedger struct {
	mu       sync.Mutex
	nextID   int64
	mints    int
	mintErr  error
	nextErr  error
	omitID   bool // when set, Mint returns no token id
}

func (f *fakeLedger) NextTokenID(_ context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	return big.NewInt(f.nextID), nil
}

func (f *fakeLedger) Mint(_ context.Context, _, _ string) (*MintResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	result := &MintResult{
		TxHash:          fmt.Sprintf("0xtx%d", f.mints),
		ContractAddress: "0x00000000000000000000000000000000000000ff",
		ChainID:         "84532",
	}
	if !f.omitID {
		result.TokenID = big.NewInt(f.nextID)
	}
	f.nextID++
	f.mints++
	return result, nil
}

func (f *fakeLedger) mintCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mints
}
