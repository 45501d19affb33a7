// Package store persists the shrinking pool of mintable token IDs.
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mintgate/models"
)

// pageSize bounds each availability scan query so no single read depends on
// the backend returning the full universe in one result set.
const pageSize = 1000

// Availability is the single source of truth for which token IDs remain
// mintable. All writes are per-row conditional updates; concurrent callers
// need no lock because the only transition is a one-way flip to false.
type Availability struct {
	db *gorm.DB
}

// New wraps the supplied database handle.
func New(db *gorm.DB) *Availability {
	return &Availability{db: db}
}

// ListAvailable returns the token IDs still available, ordered by ID. The
// scan pages through the table in fixed-size batches until a short page
// signals end of data.
func (a *Availability) ListAvailable(ctx context.Context) ([]int, error) {
	ids := make([]int, 0, models.TokenUniverse)
	for offset := 0; ; offset += pageSize {
		var page []int
		err := a.db.WithContext(ctx).
			Model(&models.TokenStatus{}).
			Where("available = ?", true).
			Order("token_id").
			Limit(pageSize).
			Offset(offset).
			Pluck("token_id", &page).Error
		if err != nil {
			return nil, fmt.Errorf("store: list available: %w", err)
		}
		ids = append(ids, page...)
		if len(page) < pageSize {
			break
		}
	}
	return ids, nil
}

// CountAvailable returns the number of available tokens via a count query.
func (a *Availability) CountAvailable(ctx context.Context) (int, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.TokenStatus{}).
		Where("available = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("store: count available: %w", err)
	}
	return int(count), nil
}

// MarkUnavailable flips the token's availability to false. The update is
// conditional on the current state, so repeated calls are no-ops; the
// boolean reports whether this call performed the transition.
func (a *Availability) MarkUnavailable(ctx context.Context, tokenID int) (bool, error) {
	if tokenID < 0 || tokenID > models.MaxTokenID {
		return false, fmt.Errorf("store: token id %d out of range", tokenID)
	}
	res := a.db.WithContext(ctx).
		Model(&models.TokenStatus{}).
		Where("token_id = ? AND available = ?", tokenID, true).
		Update("available", false)
	if res.Error != nil {
		return false, fmt.Errorf("store: mark token %d unavailable: %w", tokenID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
