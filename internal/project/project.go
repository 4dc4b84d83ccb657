// Package project covers the routine per-project surfaces around the board:
// labels, milestones and invitations.
package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"boardhub/internal/apperr"
	"boardhub/internal/auth"
	"boardhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Labels returns a project's labels in display order.
func Labels(db *gorm.DB, projectID uint, actorID uuid.UUID) ([]models.ProjectLabel, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanView(role) {
		return nil, apperr.Authorization("role %s cannot view labels", role)
	}
	var labels []models.ProjectLabel
	if err := db.Where("project_id = ?", projectID).
		Order("label_order ASC, id ASC").Find(&labels).Error; err != nil {
		return nil, fmt.Errorf("project: list labels for %d: %w", projectID, err)
	}
	return labels, nil
}

// CreateLabel appends a label at the end of the project's label list.
func CreateLabel(db *gorm.DB, projectID uint, name, color string, actorID uuid.UUID) (*models.ProjectLabel, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanEditTask(role) {
		return nil, apperr.Authorization("role %s cannot manage labels", role)
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("label name is required")
	}

	var count int64
	if err := db.Model(&models.ProjectLabel{}).
		Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("project: count labels for %d: %w", projectID, err)
	}
	label := models.ProjectLabel{ProjectID: projectID, Name: name, Color: color, Order: int(count)}
	if label.Color == "" {
		label.Color = "#93c5fd"
	}
	if err := db.Create(&label).Error; err != nil {
		return nil, fmt.Errorf("project: create label %q: %w", name, err)
	}
	return &label, nil
}

// RenameLabel renames or recolors a label. Renaming rewrites the label set
// of every task carrying the old name, since tasks store names not ids.
func RenameLabel(db *gorm.DB, projectID, labelID uint, newName, newColor string, actorID uuid.UUID) (*models.ProjectLabel, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanEditTask(role) {
		return nil, apperr.Authorization("role %s cannot manage labels", role)
	}

	var label models.ProjectLabel
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND project_id = ?", labelID, projectID).First(&label).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("label %d not found", labelID)
		}
		if err != nil {
			return fmt.Errorf("project: get label %d: %w", labelID, err)
		}

		oldName := label.Name
		if newName != "" && newName != oldName {
			label.Name = newName
			if err := rewriteTaskLabels(tx, projectID, oldName, newName); err != nil {
				return err
			}
		}
		if newColor != "" {
			label.Color = newColor
		}
		if err := tx.Save(&label).Error; err != nil {
			return fmt.Errorf("project: update label %d: %w", labelID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &label, nil
}

// DeleteLabel removes a label and strips its name from every task.
func DeleteLabel(db *gorm.DB, projectID, labelID uint, actorID uuid.UUID) error {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return err
	}
	if !auth.CanEditTask(role) {
		return apperr.Authorization("role %s cannot manage labels", role)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var label models.ProjectLabel
		err := tx.Where("id = ? AND project_id = ?", labelID, projectID).First(&label).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("label %d not found", labelID)
		}
		if err != nil {
			return fmt.Errorf("project: get label %d: %w", labelID, err)
		}

		if err := rewriteTaskLabels(tx, projectID, label.Name, ""); err != nil {
			return err
		}
		if err := tx.Delete(&label).Error; err != nil {
			return fmt.Errorf("project: delete label %d: %w", labelID, err)
		}
		if err := tx.Model(&models.ProjectLabel{}).
			Where("project_id = ? AND label_order > ?", projectID, label.Order).
			UpdateColumn("label_order", gorm.Expr("label_order - 1")).Error; err != nil {
			return fmt.Errorf("project: compact label orders: %w", err)
		}
		return nil
	})
}

// rewriteTaskLabels replaces oldName with newName in every task's label set;
// an empty newName removes the label. Order of the remaining labels is kept.
func rewriteTaskLabels(tx *gorm.DB, projectID uint, oldName, newName string) error {
	var tasks []models.Task
	if err := tx.Where("project_id = ? AND labels LIKE ?", projectID, "%"+oldName+"%").
		Find(&tasks).Error; err != nil {
		return fmt.Errorf("project: load tasks for label rewrite: %w", err)
	}
	for i := range tasks {
		labels := tasks[i].LabelList()
		changed := false
		out := labels[:0]
		for _, l := range labels {
			switch {
			case l != oldName:
				out = append(out, l)
			case newName != "":
				out = append(out, newName)
				changed = true
			default:
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := tasks[i].SetLabelList(out); err != nil {
			return fmt.Errorf("project: encode labels for task %d: %w", tasks[i].ID, err)
		}
		if err := tx.Model(&models.Task{}).
			Where("id = ?", tasks[i].ID).
			UpdateColumn("labels", tasks[i].Labels).Error; err != nil {
			return fmt.Errorf("project: rewrite labels for task %d: %w", tasks[i].ID, err)
		}
	}
	return nil
}

// Milestones returns a project's milestones, nearest due date first.
func Milestones(db *gorm.DB, projectID uint, actorID uuid.UUID) ([]models.ProjectMilestone, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanView(role) {
		return nil, apperr.Authorization("role %s cannot view milestones", role)
	}
	var milestones []models.ProjectMilestone
	if err := db.Where("project_id = ?", projectID).
		Order("due_date ASC, id ASC").Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("project: list milestones for %d: %w", projectID, err)
	}
	return milestones, nil
}

// MilestoneOpts holds milestone create/update fields.
type MilestoneOpts struct {
	Name        string
	Description string
	DueDate     *time.Time
	IsCompleted bool
}

// CreateMilestone adds a milestone to the project.
func CreateMilestone(db *gorm.DB, projectID uint, opts MilestoneOpts, actorID uuid.UUID) (*models.ProjectMilestone, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanEditTask(role) {
		return nil, apperr.Authorization("role %s cannot manage milestones", role)
	}
	if strings.TrimSpace(opts.Name) == "" {
		return nil, apperr.Validation("milestone name is required")
	}

	milestone := models.ProjectMilestone{
		ProjectID:   projectID,
		Name:        opts.Name,
		Description: opts.Description,
		DueDate:     opts.DueDate,
		IsCompleted: opts.IsCompleted,
	}
	if err := db.Create(&milestone).Error; err != nil {
		return nil, fmt.Errorf("project: create milestone %q: %w", opts.Name, err)
	}
	return &milestone, nil
}

// UpdateMilestone applies the supplied fields to a milestone.
func UpdateMilestone(db *gorm.DB, projectID, milestoneID uint, opts MilestoneOpts, actorID uuid.UUID) (*models.ProjectMilestone, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanEditTask(role) {
		return nil, apperr.Authorization("role %s cannot manage milestones", role)
	}

	var milestone models.ProjectMilestone
	err = db.Where("id = ? AND project_id = ?", milestoneID, projectID).First(&milestone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("milestone %d not found", milestoneID)
	}
	if err != nil {
		return nil, fmt.Errorf("project: get milestone %d: %w", milestoneID, err)
	}

	if opts.Name != "" {
		milestone.Name = opts.Name
	}
	if opts.Description != "" {
		milestone.Description = opts.Description
	}
	if opts.DueDate != nil {
		milestone.DueDate = opts.DueDate
	}
	milestone.IsCompleted = opts.IsCompleted
	now := time.Now().UTC()
	milestone.UpdatedAt = &now
	if err := db.Save(&milestone).Error; err != nil {
		return nil, fmt.Errorf("project: update milestone %d: %w", milestoneID, err)
	}
	return &milestone, nil
}

// DeleteMilestone removes a milestone.
func DeleteMilestone(db *gorm.DB, projectID, milestoneID uint, actorID uuid.UUID) error {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return err
	}
	if !auth.CanEditTask(role) {
		return apperr.Authorization("role %s cannot manage milestones", role)
	}
	res := db.Where("id = ? AND project_id = ?", milestoneID, projectID).
		Delete(&models.ProjectMilestone{})
	if res.Error != nil {
		return fmt.Errorf("project: delete milestone %d: %w", milestoneID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("milestone %d not found", milestoneID)
	}
	return nil
}
