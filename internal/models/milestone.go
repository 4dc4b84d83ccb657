package models

import "time"

// ProjectMilestone marks a dated goal within a project.
type ProjectMilestone struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID   uint   `gorm:"not null;index"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"size:1000"`
	DueDate     *time.Time
	IsCompleted bool `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   *time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
