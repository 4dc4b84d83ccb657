package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record referenced by tasks and participants.
// Registration and credential issuance happen outside boardhub; this
// table only mirrors what the auth boundary establishes.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"size:256;uniqueIndex;not null"`
	UserName  string    `gorm:"size:64;not null"`
	CreatedAt time.Time
}
