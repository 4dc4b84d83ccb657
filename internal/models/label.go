package models

import "time"

// ProjectLabel is a named, colored tag configured per project. Tasks store
// label names (not ids) in their Labels column; renaming a label rewrites
// the label sets of every task carrying the old name.
type ProjectLabel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID uint   `gorm:"not null;index"`
	Name      string `gorm:"size:50;not null"`
	Color     string `gorm:"size:7;default:#93c5fd"`
	Order     int    `gorm:"column:label_order;not null;default:0"`
	CreatedAt time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
