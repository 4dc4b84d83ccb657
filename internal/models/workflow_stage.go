package models

import "time"

// WorkflowStage is one project-configurable step in a task's lifecycle.
// Order values are unique and contiguous from 0 within a project; a task's
// StatusCode of N points at the stage with Order N-1.
type WorkflowStage struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID   uint   `gorm:"not null;index"`
	Name        string `gorm:"size:50;not null"`
	Color       string `gorm:"size:7;default:#6b7280"`
	Order       int    `gorm:"column:stage_order;not null;default:0"`
	IsDefault   bool   `gorm:"default:false"`
	IsCompleted bool   `gorm:"default:false"`
	CreatedAt   time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
