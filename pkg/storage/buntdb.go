// Package storage persists the dispatched alert log.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/tidwall/buntdb"
)

// BuntStorage implements the core.AlertStorage interface using BuntDB
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
}

// FromMemory creates an in-memory alert log
func FromMemory() (core.AlertStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based alert log
func FromFile(file string) (core.AlertStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (core.AlertStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex("created_index", "*", buntdb.IndexJSON("created_at"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	// A reopened file still holds alerts from earlier runs, the ID
	// counter resumes after the highest stored key
	var lastID int64
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, _ string) bool {
			if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > lastID {
				lastID = id
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan alerts: %w", err)
	}

	return &BuntStorage{
		lastID: lastID,
		db:     db,
	}, nil
}

// getID generates a unique ID for alerts
func (b *BuntStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// CreateAlert stores a dispatched alert
func (b *BuntStorage) CreateAlert(alert *core.Alert) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		alert.ID = b.getID()
		content, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}

		_, _, err = tx.Set(strconv.FormatInt(alert.ID, 10), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store alert: %w", err)
		}

		return nil
	})
}

// Alerts retrieves alerts in dispatch order, applying the given filters
func (b *BuntStorage) Alerts(filters ...core.AlertFilter) ([]*core.Alert, error) {
	alerts := make([]*core.Alert, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Ascend("created_index", func(_, value string) bool {
			var alert core.Alert
			if err := json.Unmarshal([]byte(value), &alert); err != nil {
				return true // skip malformed entries
			}

			for _, filter := range filters {
				if !filter(alert) {
					return true
				}
			}

			alerts = append(alerts, &alert)
			return true
		})

		if err != nil {
			return fmt.Errorf("failed to iterate over alerts: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return alerts, nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
