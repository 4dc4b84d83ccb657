package task

import (
	"fmt"
	"strings"

	"boardhub/internal/activity"
	"boardhub/internal/apperr"
	"boardhub/internal/auth"
	"boardhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddComment appends a comment to a task and records a comment activity.
func AddComment(db *gorm.DB, taskID uint, content string, actorID uuid.UUID) (*models.TaskComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment content is required")
	}

	var comment models.TaskComment
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := get(tx, taskID)
		if err != nil {
			return err
		}
		role, err := auth.RoleOf(tx, task.ProjectID, actorID)
		if err != nil {
			return err
		}
		if !auth.CanComment(role) {
			return apperr.Authorization("role %s cannot comment", role)
		}

		comment = models.TaskComment{
			TaskID:  taskID,
			UserID:  actorID,
			Content: content,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("task: add comment to %d: %w", taskID, err)
		}
		return activity.RecordComment(tx, task, actorID)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns a task's comments oldest-first.
func ListComments(db *gorm.DB, taskID uint, actorID uuid.UUID) ([]models.TaskComment, error) {
	task, err := get(db, taskID)
	if err != nil {
		return nil, err
	}
	role, err := auth.RoleOf(db, task.ProjectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanView(role) {
		return nil, apperr.Authorization("role %s cannot view comments", role)
	}

	var comments []models.TaskComment
	if err := db.Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("task: list comments of %d: %w", taskID, err)
	}
	return comments, nil
}
