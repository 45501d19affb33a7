package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// TokenUniverse is the fixed total supply of mintable tokens.
	TokenUniverse = 6666
	// MaxTokenID is the highest valid token identifier.
	MaxTokenID = TokenUniverse - 1

	seedBatchSize = 1000
)

// TokenStatus tracks whether a token ID remains mintable. A row transitions
// to Available=false exactly once, when reconciliation confirms the chain
// shows the token claimed by a non-treasury owner.
type TokenStatus struct {
	TokenID   int  `gorm:"primaryKey;autoIncrement:false"`
	Available bool `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the table compatible with the original status table.
func (TokenStatus) TableName() string { return "nft_status" }

// AutoMigrate performs all schema migrations for the service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&TokenStatus{})
}

// Seed inserts any missing rows of the token universe, all available.
// Existing rows are left untouched, so seeding is safe to repeat on every
// startup and never resurrects an unavailable token.
func Seed(db *gorm.DB) error {
	now := time.Now().UTC()
	for start := 0; start < TokenUniverse; start += seedBatchSize {
		end := start + seedBatchSize
		if end > TokenUniverse {
			end = TokenUniverse
		}
		batch := make([]TokenStatus, 0, end-start)
		for id := start; id < end; id++ {
			batch = append(batch, TokenStatus{TokenID: id, Available: true, CreatedAt: now, UpdatedAt: now})
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error; err != nil {
			return err
		}
	}
	return nil
}
