package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateUserID() string {
	return fmt.Sprintf("user_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateRecordID(prefix string) string {
	return fmt.Sprintf("%s_%s_%d",
		prefix,
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateRoomID() string {
	return fmt.Sprintf("room_%d", uuid.New().ID())
}

func (r *DiceNewRequest) Validate() error {
	if r.BetAmount < 5 {
		return fmt.Errorf("bet must be at least 5 points")
	}
	if r.BetAmount%5 != 0 {
		return fmt.Errorf("bet must be a multiple of 5")
	}
	return nil
}

// Timestamp formats t the way every record in the system carries time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
