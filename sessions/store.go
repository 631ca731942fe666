package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"carbonlens/web/dispatcher"
	"carbonlens/web/wizard"
)

var ErrNotFound = errors.New("onboarding session not found")

// Session is one visitor's live wizard plus the checkout context handed in by the
// pricing page.
type Session struct {
	ID           string
	Wizard       *wizard.Wizard
	BillingCycle string

	mu         sync.Mutex
	registered bool
	result     *dispatcher.Result
	lastSeen   time.Time
}

func (s *Session) SetResult(r dispatcher.Result) {
	s.mu.Lock()
	s.result = &r
	if r.Registered {
		s.registered = true
	}
	s.mu.Unlock()
}

// Result is the outcome of the successful completion, if any.
func (s *Session) Result() (dispatcher.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return dispatcher.Result{}, false
	}
	return *s.result, true
}

// MarkRegistered remembers that the account exists so a checkout retry does not
// register twice.
func (s *Session) MarkRegistered() {
	s.mu.Lock()
	s.registered = true
	s.mu.Unlock()
}

func (s *Session) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{sessions: map[string]*Session{}, ttl: ttl, now: time.Now}
}

// Create registers a new session. build receives the session so wizard callbacks
// can refer back to it.
func (s *Store) Create(billingCycle string, build func(*Session) (*wizard.Wizard, error)) (*Session, error) {
	sess := &Session{ID: uuid.NewString(), BillingCycle: billingCycle}
	w, err := build(sess)
	if err != nil {
		return nil, err
	}
	sess.Wizard = w
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl && !sess.Wizard.Processing() {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep drops idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl && !sess.Wizard.Processing() {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
