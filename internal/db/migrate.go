package db

import (
	"fmt"

	"boardhub/internal/models"

	"gorm.io/gorm"
)

// AllModels returns every GORM model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.ProjectParticipant{},
		&models.ProjectInvitation{},
		&models.WorkflowStage{},
		&models.Task{},
		&models.TaskComment{},
		&models.TaskActivity{},
		&models.ProjectLabel{},
		&models.ProjectMilestone{},
	}
}

// AutoMigrate creates or updates all boardhub tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
