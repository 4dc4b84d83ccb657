// Package task orchestrates task mutations: authorization, stage-code
// validation, position allocation, persistence and audit recording. Every
// mutation runs in a single transaction; there is no cross-call ordering
// guarantee, and concurrent reorders into the same column race by design
// (positions are advisory).
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"boardhub/internal/activity"
	"boardhub/internal/apperr"
	"boardhub/internal/auth"
	"boardhub/internal/models"
	"boardhub/internal/position"
	"boardhub/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a task.
type CreateOpts struct {
	Title          string
	Description    string
	AssigneeID     *uuid.UUID
	StatusCode     int
	Position       *float64
	Priority       int
	Type           string
	Labels         []string
	DueDate        *time.Time
	EstimatedHours *int
}

// UpdateOpts holds a partial update; nil fields are left untouched.
type UpdateOpts struct {
	Title          *string
	Description    *string
	AssigneeID     *uuid.UUID
	ClearAssignee  bool
	StatusCode     *int
	Position       *float64
	Priority       *int
	Type           *string
	Labels         []string
	DueDate        *time.Time
	EstimatedHours *int
}

// Create inserts a task, allocating a position at the end of the target
// status group unless the caller supplied one.
func Create(db *gorm.DB, projectID uint, opts CreateOpts, actorID uuid.UUID) (*models.Task, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanCreateTask(role) {
		return nil, apperr.Authorization("role %s cannot create tasks", role)
	}

	if strings.TrimSpace(opts.Title) == "" {
		return nil, apperr.Validation("task title is required")
	}
	if opts.StatusCode == 0 {
		opts.StatusCode = 1
	}
	if err := workflow.ValidateStatusCode(opts.StatusCode); err != nil {
		return nil, err
	}
	if opts.Priority == 0 {
		opts.Priority = 1
	}
	if opts.Priority < 1 || opts.Priority > 4 {
		return nil, apperr.Validation("priority %d is out of range [1, 4]", opts.Priority)
	}
	if opts.Type == "" {
		opts.Type = "task"
	}
	if opts.AssigneeID != nil {
		ok, err := auth.IsParticipant(db, projectID, *opts.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Validation("assignee must be a participant in the project")
		}
	}

	task := models.Task{
		ProjectID:      projectID,
		Title:          opts.Title,
		Description:    opts.Description,
		AssigneeID:     opts.AssigneeID,
		StatusCode:     opts.StatusCode,
		Priority:       opts.Priority,
		Type:           opts.Type,
		DueDate:        opts.DueDate,
		EstimatedHours: opts.EstimatedHours,
		CreatedByID:    actorID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := task.SetLabelList(opts.Labels); err != nil {
		return nil, apperr.Validation("labels are not encodable").Wrap(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if opts.Position != nil {
			task.Position = *opts.Position
		} else {
			existing, err := columnPositions(tx, projectID, task.StatusCode)
			if err != nil {
				return err
			}
			task.Position = position.Append(existing)
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("task: create: %w", err)
		}
		return activity.RecordCreated(tx, &task, actorID)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies the supplied fields and records exactly one audit entry
// for the mutation.
func Update(db *gorm.DB, taskID uint, opts UpdateOpts, actorID uuid.UUID) (*models.Task, error) {
	var updated models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		before, err := get(tx, taskID)
		if err != nil {
			return err
		}
		role, err := auth.RoleOf(tx, before.ProjectID, actorID)
		if err != nil {
			return err
		}
		if !auth.CanEditTask(role) {
			return apperr.Authorization("role %s cannot edit tasks", role)
		}

		after := *before
		if opts.Title != nil {
			if strings.TrimSpace(*opts.Title) == "" {
				return apperr.Validation("task title cannot be empty")
			}
			after.Title = *opts.Title
		}
		if opts.Description != nil {
			after.Description = *opts.Description
		}
		if opts.ClearAssignee {
			after.AssigneeID = nil
		} else if opts.AssigneeID != nil {
			ok, err := auth.IsParticipant(tx, before.ProjectID, *opts.AssigneeID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Validation("assignee must be a participant in the project")
			}
			after.AssigneeID = opts.AssigneeID
		}
		if opts.StatusCode != nil {
			if err := workflow.ValidateStatusCode(*opts.StatusCode); err != nil {
				return err
			}
			after.StatusCode = *opts.StatusCode
		}
		if opts.Position != nil {
			after.Position = *opts.Position
		}
		if opts.Priority != nil {
			if *opts.Priority < 1 || *opts.Priority > 4 {
				return apperr.Validation("priority %d is out of range [1, 4]", *opts.Priority)
			}
			after.Priority = *opts.Priority
		}
		if opts.Type != nil {
			after.Type = *opts.Type
		}
		if opts.Labels != nil {
			if err := after.SetLabelList(opts.Labels); err != nil {
				return apperr.Validation("labels are not encodable").Wrap(err)
			}
		}
		if opts.DueDate != nil {
			after.DueDate = opts.DueDate
		}
		if opts.EstimatedHours != nil {
			after.EstimatedHours = opts.EstimatedHours
		}

		now := time.Now().UTC()
		after.UpdatedAt = &now
		if err := tx.Save(&after).Error; err != nil {
			return fmt.Errorf("task: update %d: %w", taskID, err)
		}
		if err := activity.RecordDiff(tx, before, &after, actorID); err != nil {
			return err
		}
		updated = after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reorder moves a task to a status group and position in one atomic write.
// The caller-supplied position is accepted as authoritative for this task.
func Reorder(db *gorm.DB, taskID uint, newStatusCode int, newPosition float64, actorID uuid.UUID) (*models.Task, error) {
	if err := workflow.ValidateStatusCode(newStatusCode); err != nil {
		return nil, err
	}

	var updated models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		before, err := get(tx, taskID)
		if err != nil {
			return err
		}
		role, err := auth.RoleOf(tx, before.ProjectID, actorID)
		if err != nil {
			return err
		}
		if !auth.CanEditTask(role) {
			return apperr.Authorization("role %s cannot reorder tasks", role)
		}

		after := *before
		after.StatusCode = newStatusCode
		after.Position = newPosition
		now := time.Now().UTC()
		after.UpdatedAt = &now

		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"status_code": newStatusCode,
				"position":    newPosition,
				"updated_at":  now,
			}).Error; err != nil {
			return fmt.Errorf("task: reorder %d: %w", taskID, err)
		}
		if err := activity.RecordDiff(tx, before, &after, actorID); err != nil {
			return err
		}
		updated = after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a task. Only the project owner, an admin, or the task's
// creator may delete it. The deleted activity record is written before the
// row goes away so feeds fetched mid-flight still see it.
func Delete(db *gorm.DB, taskID uint, actorID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		task, err := get(tx, taskID)
		if err != nil {
			return err
		}
		role, err := auth.RoleOf(tx, task.ProjectID, actorID)
		if err != nil {
			return err
		}
		if !auth.CanDeleteTask(role, task.CreatedByID == actorID) {
			return apperr.Authorization("only the project owner, an admin, or the task creator can delete this task")
		}

		if err := activity.RecordDeleted(tx, task, actorID); err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskComment{}).Error; err != nil {
			return fmt.Errorf("task: delete comments of %d: %w", taskID, err)
		}
		if err := tx.Delete(&models.Task{}, taskID).Error; err != nil {
			return fmt.Errorf("task: delete %d: %w", taskID, err)
		}
		return nil
	})
}

// Get returns a task after checking the actor can view its project.
func Get(db *gorm.DB, taskID uint, actorID uuid.UUID) (*models.Task, error) {
	task, err := get(db, taskID)
	if err != nil {
		return nil, err
	}
	role, err := auth.RoleOf(db, task.ProjectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanView(role) {
		return nil, apperr.Authorization("role %s cannot view tasks", role)
	}
	return task, nil
}

func get(db *gorm.DB, taskID uint) (*models.Task, error) {
	var task models.Task
	err := db.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("task %d not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("task: get %d: %w", taskID, err)
	}
	return &task, nil
}

// columnPositions lists the positions currently used in a status group.
func columnPositions(db *gorm.DB, projectID uint, statusCode int) ([]float64, error) {
	var positions []float64
	if err := db.Model(&models.Task{}).
		Where("project_id = ? AND status_code = ?", projectID, statusCode).
		Pluck("position", &positions).Error; err != nil {
		return nil, fmt.Errorf("task: list positions for project %d status %d: %w", projectID, statusCode, err)
	}
	return positions, nil
}
