package services_test

import (
	"path/filepath"
	"testing"
	"time"

	"arcade-rooms-backend/internal/models"
	"arcade-rooms-backend/internal/services"
)

func newTestStore(t *testing.T) *services.UserStore {
	store, err := services.NewUserStore("")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func seedUser(t *testing.T, store *services.UserStore, username string, points int64) *models.User {
	user := &models.User{
		ID:         "test_" + username,
		Username:   username,
		Password:   "not-a-real-hash",
		Name:       username,
		Role:       models.RoleUser,
		Points:     points,
		IsActive:   true,
		CreateTime: models.Timestamp(time.Now()),
	}
	if err := store.Create(user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

func TestUserStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	store, err := services.NewUserStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	seedUser(t, store, "alice", 1000)

	reopened, err := services.NewUserStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}

	user, err := reopened.GetByUsername("alice")
	if err != nil {
		t.Fatalf("User should survive a restart: %v", err)
	}
	if user.Points != 1000 {
		t.Errorf("Expected 1000 points after reload, got %d", user.Points)
	}

	byID, err := reopened.GetByID(user.ID)
	if err != nil {
		t.Fatalf("Lookup by id should work after reload: %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("Expected alice, got %s", byID.Username)
	}
}

func TestEnsureAdmin(t *testing.T) {
	store := newTestStore(t)

	if err := store.EnsureAdmin(); err != nil {
		t.Fatalf("Failed to seed admin: %v", err)
	}

	admin, err := store.GetByUsername("admin")
	if err != nil {
		t.Fatalf("Admin should exist: %v", err)
	}
	if admin.ID != "admin_001" {
		t.Errorf("Expected admin_001, got %s", admin.ID)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("Expected admin role, got %s", admin.Role)
	}
	if admin.Points != 999999 {
		t.Errorf("Expected 999999 points, got %d", admin.Points)
	}
	if admin.Canes != 1000 {
		t.Errorf("Expected 1000 canes, got %d", admin.Canes)
	}

	// Seeding again must not reset an existing account.
	if _, err := store.Update("admin", func(u *models.User) error {
		u.Points = 5
		return nil
	}); err != nil {
		t.Fatalf("Failed to update admin: %v", err)
	}
	if err := store.EnsureAdmin(); err != nil {
		t.Fatalf("Second EnsureAdmin failed: %v", err)
	}
	admin, _ = store.GetByUsername("admin")
	if admin.Points != 5 {
		t.Errorf("EnsureAdmin overwrote an existing account: %d points", admin.Points)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "bob", 1000)

	err := store.Create(&models.User{ID: "other", Username: "bob"})
	if err != services.ErrUserExists {
		t.Errorf("Expected ErrUserExists, got %v", err)
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "carol", 1000)

	boom := services.ErrInsufficientPoints
	_, err := store.Update("carol", func(u *models.User) error {
		u.Points = 0
		return boom
	})
	if err != boom {
		t.Fatalf("Expected the callback error, got %v", err)
	}

	user, _ := store.GetByUsername("carol")
	if user.Points != 1000 {
		t.Errorf("Failed update leaked a partial write: %d points", user.Points)
	}
}

func TestTopByPoints(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "low", 100)
	seedUser(t, store, "high", 5000)
	seedUser(t, store, "mid", 1000)

	top := store.TopByPoints(2)
	if len(top) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(top))
	}
	if top[0].Username != "high" || top[1].Username != "mid" {
		t.Errorf("Wrong ordering: %s, %s", top[0].Username, top[1].Username)
	}
	if top[0].Rank != 1 || top[1].Rank != 2 {
		t.Errorf("Ranks not assigned in order: %d, %d", top[0].Rank, top[1].Rank)
	}
}

func TestDeleteUser(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store, "dave", 1000)

	if err := store.Delete("dave"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := store.GetByUsername("dave"); err != services.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound by username, got %v", err)
	}
	if _, err := store.GetByID(user.ID); err != services.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound by id, got %v", err)
	}
}
