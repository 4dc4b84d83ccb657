package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Task is the core board item. StatusCode is a 1-based ordinal into the
// project's current ordered workflow-stage list, not a stable stage id;
// Position is an advisory float sort key within a status group.
type Task struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	ProjectID      uint       `gorm:"not null;index"`
	Title          string     `gorm:"size:200;not null"`
	Description    string     `gorm:"size:1000"`
	AssigneeID     *uuid.UUID `gorm:"type:uuid;index"`
	StatusCode     int        `gorm:"not null;default:1;index"`
	Position       float64    `gorm:"not null;default:1000"`
	Priority       int        `gorm:"not null;default:1"` // 1=Low, 2=Medium, 3=High, 4=Critical
	Type           string     `gorm:"size:50;default:task"` // task, bug, feature, story, epic
	Labels         string     `gorm:"type:text"`             // JSON array of label names, ordered
	DueDate        *time.Time
	EstimatedHours *int
	CreatedByID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
	UpdatedAt      *time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}

// LabelList decodes the stored JSON label array. An empty or malformed
// column yields an empty list rather than an error; label data is advisory.
func (t *Task) LabelList() []string {
	if t.Labels == "" {
		return nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(t.Labels), &labels); err != nil {
		return nil
	}
	return labels
}

// SetLabelList encodes labels into the stored JSON column, preserving order.
func (t *Task) SetLabelList(labels []string) error {
	if labels == nil {
		t.Labels = ""
		return nil
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return err
	}
	t.Labels = string(data)
	return nil
}

// TaskComment is a free-text comment on a task.
type TaskComment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	TaskID    uint      `gorm:"not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"size:2000;not null"`
	CreatedAt time.Time
	UpdatedAt *time.Time

	Task Task `gorm:"foreignKey:TaskID"`
}
