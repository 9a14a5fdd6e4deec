package services

import (
	"sync"
	"time"

	"arcade-rooms-backend/internal/models"
)

// Ledger mutates point balances and keeps the append-only points history.
// Every mutation goes through UpdatePoints so the no-overdraft invariant
// holds for any call sequence. The history is in-memory only and capped at
// models.MaxPointsHistory entries, oldest dropped.
type Ledger struct {
	store *UserStore

	mu      sync.RWMutex
	history []models.PointsRecord // newest first
}

func NewLedger(store *UserStore) *Ledger {
	return &Ledger{store: store}
}

// UpdatePoints applies a signed points delta to the user. A negative amount
// larger than the current balance is rejected with ErrInsufficientPoints and
// leaves no trace. On success a PointsRecord is appended and the user table
// is persisted.
func (l *Ledger) UpdatePoints(userID string, amount int64, reason string, metadata map[string]any) (*models.PointsUpdate, error) {
	var upd models.PointsUpdate

	user, err := l.store.UpdateByID(userID, func(u *models.User) error {
		if amount < 0 && u.Points < -amount {
			return ErrInsufficientPoints
		}
		upd.OldPoints = u.Points
		u.Points += amount
		upd.NewPoints = u.Points
		return nil
	})
	if err != nil {
		return nil, err
	}

	recType := models.RecordTypeEarn
	if amount < 0 {
		recType = models.RecordTypeSpend
	}
	l.appendRecord(models.PointsRecord{
		ID:        models.GenerateRecordID("pts"),
		UserID:    user.ID,
		Timestamp: time.Now(),
		Reason:    reason,
		Amount:    amount,
		OldPoints: upd.OldPoints,
		NewPoints: upd.NewPoints,
		Type:      recType,
		Metadata:  metadata,
	})

	return &upd, nil
}

// AddCanes credits the secondary currency. Canes mutations do not produce
// points records.
func (l *Ledger) AddCanes(userID string, amount int64) (int64, error) {
	user, err := l.store.UpdateByID(userID, func(u *models.User) error {
		u.Canes += amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.Canes, nil
}

// SpendCanes debits canes, rejecting overdrafts.
func (l *Ledger) SpendCanes(userID string, price int64) (int64, error) {
	user, err := l.store.UpdateByID(userID, func(u *models.User) error {
		if u.Canes < price {
			return ErrInsufficientCanes
		}
		u.Canes -= price
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.Canes, nil
}

func (l *Ledger) appendRecord(rec models.PointsRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append([]models.PointsRecord{rec}, l.history...)
	if len(l.history) > models.MaxPointsHistory {
		l.history = l.history[:models.MaxPointsHistory]
	}
}

// History returns the most recent records, newest first.
func (l *Ledger) History(limit int) []models.PointsRecord {
	return l.recent(limit, "")
}

// UserHistory returns the most recent records for one user, newest first.
func (l *Ledger) UserHistory(userID string, limit int) []models.PointsRecord {
	return l.recent(limit, userID)
}

func (l *Ledger) recent(limit int, userID string) []models.PointsRecord {
	if limit <= 0 || limit > models.MaxPointsHistory {
		limit = 50
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.PointsRecord, 0, limit)
	for _, rec := range l.history {
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}
