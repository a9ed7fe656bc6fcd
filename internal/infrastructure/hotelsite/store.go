package hotelsite

import (
	"sync"

	"github.com/google/uuid"
)

type Rank string

const (
	RankPremium Rank = "premium"
	RankNormal  Rank = "normal"
)

type Member struct {
	Email    string
	Password string
	Name     string
	Rank     Rank
}

// DefaultMembers are the accounts the hosted application ships with.
var DefaultMembers = []Member{
	{Email: "ichiro@example.com", Password: "password", Name: "山田一郎", Rank: RankPremium},
	{Email: "sakura@example.com", Password: "pass1234", Name: "松本さくら", Rank: RankNormal},
}

// MemoryStore holds members and login sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	members  map[string]Member
	sessions map[string]string
}

func NewMemoryStore(seed []Member) *MemoryStore {
	s := &MemoryStore{
		members:  make(map[string]Member),
		sessions: make(map[string]string),
	}
	for _, m := range seed {
		s.members[m.Email] = m
	}
	return s
}

// SignUp registers m, replacing an earlier registration of the same email.
// The hosted application keeps accounts per browser, so every fresh browser
// can sign up with the same address.
func (s *MemoryStore) SignUp(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.Email] = m
}

func (s *MemoryStore) Authenticate(email, password string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[email]
	if !ok || m.Password != password {
		return Member{}, false
	}
	return m, true
}

func (s *MemoryStore) Member(email string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[email]
	return m, ok
}

// Delete removes the member and every session it holds.
func (s *MemoryStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, email)
	for token, owner := range s.sessions {
		if owner == email {
			delete(s.sessions, token)
		}
	}
}

func (s *MemoryStore) CreateSession(email string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = email
	return token
}

// SessionMember resolves a session token to its member.
func (s *MemoryStore) SessionMember(token string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.sessions[token]
	if !ok {
		return Member{}, false
	}
	m, ok := s.members[email]
	return m, ok
}

func (s *MemoryStore) EndSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
