package repository

import "time"

// DynamoOption configures a DynamoStore.
type DynamoOption func(*DynamoStore)

// WithCompression toggles gzip of stored documents.
func WithCompression(enabled bool) DynamoOption {
	return func(s *DynamoStore) {
		s.compress = enabled
	}
}

// WithDynamoClock sets the clock used for UpdatedAt.
func WithDynamoClock(now func() time.Time) DynamoOption {
	return func(s *DynamoStore) {
		if now != nil {
			s.now = now
		}
	}
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock sets the clock used for updated_at.
func WithSQLiteClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}
