package storage

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"aetherticket/config"
)

// TicketRecord is one row per ticket channel ever created. Records are never
// deleted; closed tickets are retained as an audit and transcript log even
// after the channel itself is removed.
type TicketRecord struct {
	ID         int64
	ChannelID  string
	UserID     string
	CreatedAt  time.Time
	ClosedAt   *time.Time
	Transcript *string
}

// Open reports whether the ticket has not been closed yet.
func (r *TicketRecord) Open() bool {
	return r.ClosedAt == nil
}

// TicketStore is the durable ticket repository, keyed by channel ID.
//
// Get returns (nil, nil) when no record exists; absence is a normal outcome.
// Close trivially succeeds when no row matches: callers must not assume the
// row's existence was verified, since close may race with reconciliation.
type TicketStore interface {
	Init() error
	Create(channelID, userID string) error
	Close(channelID string, transcript *string) error
	Get(channelID string) (*TicketRecord, error)
	ListByUser(userID string) ([]TicketRecord, error)
	Shutdown() error
}

// New selects a store backend from the configured driver.
func New(cfg config.DatabaseSettings, log *zap.Logger) (TicketStore, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, log), nil
	case "mongodb":
		return NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, log), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (use \"sqlite\" or \"mongodb\")", cfg.Driver)
	}
}
