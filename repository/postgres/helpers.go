package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// validUUID guards UUID columns so malformed ids read as "not found" instead of a driver error.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func monthLockKey(userID string, year, month int) string {
	return fmt.Sprintf("monthly_plan:%s:%04d-%02d", userID, year, month)
}
