package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"arcade-rooms-backend/internal/models"
)

// snapshot is the on-disk shape of the user table. The whole table is
// rewritten on every mutation; there is no incremental log.
type snapshot struct {
	Version   int                     `json:"version"`
	Users     map[string]*models.User `json:"users"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// UserStore owns the user table. All access goes through the store's lock;
// callers get value copies and mutate through Update.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by username
	byID  map[string]string       // user id -> username
	path  string                  // empty: in-memory only
}

func NewUserStore(path string) (*UserStore, error) {
	s := &UserStore{
		users: make(map[string]*models.User),
		byID:  make(map[string]string),
		path:  path,
	}

	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %v", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %v", err)
	}
	for username, u := range snap.Users {
		s.users[username] = u
		s.byID[u.ID] = username
	}

	return s, nil
}

// EnsureAdmin seeds the default admin account if it is missing.
func (s *UserStore) EnsureAdmin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users["admin"]; ok {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:         "admin_001",
		Username:   "admin",
		Password:   string(hash),
		Name:       "System Administrator",
		Role:       models.RoleAdmin,
		Points:     999999,
		Canes:      1000,
		IsActive:   true,
		CreateTime: models.Timestamp(time.Now()),
	}
	s.users["admin"] = admin
	s.byID[admin.ID] = admin.Username

	return s.saveLocked()
}

func (s *UserStore) Create(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return ErrUserExists
	}

	cp := *u
	s.users[u.Username] = &cp
	s.byID[u.ID] = u.Username

	return s.saveLocked()
}

func (s *UserStore) GetByUsername(username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return *u, nil
}

func (s *UserStore) GetByID(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getByIDLocked(id)
}

func (s *UserStore) getByIDLocked(id string) (models.User, error) {
	username, ok := s.byID[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return *s.users[username], nil
}

// Update applies fn to the stored user under the write lock and persists the
// table. fn returning an error aborts the mutation with no state change.
func (s *UserStore) Update(username string, fn func(*models.User) error) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	prev := *u
	if err := fn(u); err != nil {
		*u = prev
		return models.User{}, err
	}

	if err := s.saveLocked(); err != nil {
		*u = prev
		return models.User{}, err
	}
	return *u, nil
}

// UpdateByID is Update addressed by user id.
func (s *UserStore) UpdateByID(id string, fn func(*models.User) error) (models.User, error) {
	s.mu.RLock()
	username, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.Update(username, fn)
}

func (s *UserStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	delete(s.users, username)
	delete(s.byID, u.ID)

	return s.saveLocked()
}

func (s *UserStore) List() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// TopByPoints returns the leaderboard: top n users by points descending,
// recomputed from the full table on every call.
func (s *UserStore) TopByPoints(n int) []models.LeaderboardEntry {
	s.mu.RLock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	s.mu.RUnlock()

	sort.SliceStable(users, func(i, j int) bool { return users[i].Points > users[j].Points })
	if len(users) > n {
		users = users[:n]
	}

	entries := make([]models.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = models.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   u.ID,
			Username: u.Username,
			Points:   u.Points,
			Role:     u.Role,
		}
	}
	return entries
}

func (s *UserStore) saveLocked() error {
	if s.path == "" {
		return nil
	}

	snap := snapshot{
		Version:   1,
		Users:     s.users,
		UpdatedAt: time.Now(),
	}
	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user table: %v", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}
