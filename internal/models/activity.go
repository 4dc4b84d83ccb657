package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity types form a closed set; anything else is rejected before write.
const (
	ActivityCreated        = "created"
	ActivityUpdated        = "updated"
	ActivityStatusChange   = "status_change"
	ActivityAssigneeChange = "assignee_change"
	ActivityPriorityChange = "priority_change"
	ActivityComment        = "comment"
	ActivityDeleted        = "deleted"
)

// TaskActivity is an immutable audit entry for one task mutation. Rows are
// never updated or deleted after creation; ProjectID is denormalized so the
// project feed, including the deleted record itself, survives task removal.
type TaskActivity struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	TaskID       uint      `gorm:"not null;index"`
	ProjectID    uint      `gorm:"not null;index"`
	UserID       uuid.UUID `gorm:"type:uuid;not null"`
	ActivityType string    `gorm:"size:50;not null;index"`
	Description  string    `gorm:"size:500"`
	OldValue     *string   `gorm:"size:100"`
	NewValue     *string   `gorm:"size:100"`
	CreatedAt    time.Time `gorm:"index"`
}
