// Package workflow owns the seam between a project's configurable ordered
// stage list and the fixed integer status code stored on each task. A task's
// StatusCode N means "the stage currently at ordinal N" (1-based); reordering
// or deleting stages changes what every such code means, so every mutation
// here must keep that positional interpretation intact.
package workflow

import (
	"errors"
	"fmt"

	"boardhub/internal/apperr"
	"boardhub/internal/auth"
	"boardhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxStatusCode bounds the status enumeration. Projects can configure more
// stages than the default four, up to this cap.
const MaxStatusCode = 20

// statusLadder is the fixed 5-value fallback for projects that predate
// configurable stages.
var statusLadder = map[int]string{
	1: "Todo",
	2: "InProgress",
	3: "InReview",
	4: "Done",
	5: "Cancelled",
}

// defaultStages seeds a project's stage list the first time stages are
// requested and none exist.
func defaultStages(projectID uint) []models.WorkflowStage {
	return []models.WorkflowStage{
		{ProjectID: projectID, Name: "To Do", Color: "#6b7280", Order: 0, IsDefault: true},
		{ProjectID: projectID, Name: "In Progress", Color: "#3b82f6", Order: 1},
		{ProjectID: projectID, Name: "In Review", Color: "#f59e0b", Order: 2},
		{ProjectID: projectID, Name: "Done", Color: "#10b981", Order: 3, IsCompleted: true},
	}
}

// ValidateStatusCode rejects codes outside the bounded enumeration before
// any mutation is attempted.
func ValidateStatusCode(code int) error {
	if code < 1 || code > MaxStatusCode {
		return apperr.Validation("status code %d is out of range [1, %d]", code, MaxStatusCode)
	}
	return nil
}

// Stages returns the project's stages ordered by their display order,
// without seeding defaults.
func Stages(db *gorm.DB, projectID uint) ([]models.WorkflowStage, error) {
	var stages []models.WorkflowStage
	if err := db.Where("project_id = ?", projectID).
		Order("stage_order ASC").Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("workflow: list stages for project %d: %w", projectID, err)
	}
	return stages, nil
}

// ListStages returns the ordered stage list, lazily creating the four
// defaults when the project has none yet.
func ListStages(db *gorm.DB, projectID uint) ([]models.WorkflowStage, error) {
	stages, err := Stages(db, projectID)
	if err != nil {
		return nil, err
	}
	if len(stages) > 0 {
		return stages, nil
	}

	seeded := defaultStages(projectID)
	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range seeded {
			if err := tx.Create(&seeded[i]).Error; err != nil {
				return fmt.Errorf("workflow: seed default stage %q: %w", seeded[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}

// DisplayName resolves a status code to a human-readable name against the
// project's current stage list. Codes beyond the configured stages fall back
// to the fixed ladder for projects that predate configurable stages.
func DisplayName(db *gorm.DB, projectID uint, statusCode int) (string, error) {
	stages, err := Stages(db, projectID)
	if err != nil {
		return "", err
	}
	return displayName(stages, statusCode), nil
}

// NameIn resolves a status code against an already-loaded stage list, for
// callers that project many tasks against one snapshot of the stages.
func NameIn(stages []models.WorkflowStage, statusCode int) string {
	return displayName(stages, statusCode)
}

func displayName(stages []models.WorkflowStage, statusCode int) string {
	if statusCode >= 1 && statusCode <= len(stages) {
		return stages[statusCode-1].Name
	}
	if name, ok := statusLadder[statusCode]; ok {
		return name
	}
	return fmt.Sprintf("Stage %d", statusCode)
}

// TaskCountAtOrdinal counts the tasks whose status code currently resolves
// to the given 0-based stage ordinal.
func TaskCountAtOrdinal(db *gorm.DB, projectID uint, ordinal int) (int64, error) {
	var count int64
	if err := db.Model(&models.Task{}).
		Where("project_id = ? AND status_code = ?", projectID, ordinal+1).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("workflow: count tasks at ordinal %d: %w", ordinal, err)
	}
	return count, nil
}

// CreateOpts holds parameters for creating a stage.
type CreateOpts struct {
	Name        string
	Color       string
	IsCompleted bool
}

// CreateStage appends a stage at the end of the project's stage list.
func CreateStage(db *gorm.DB, projectID uint, opts CreateOpts, actorID uuid.UUID) (*models.WorkflowStage, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageStages(role) {
		return nil, apperr.Authorization("role %s cannot manage workflow stages", role)
	}
	if opts.Name == "" {
		return nil, apperr.Validation("stage name is required")
	}

	stages, err := ListStages(db, projectID)
	if err != nil {
		return nil, err
	}
	if len(stages) >= MaxStatusCode {
		return nil, apperr.InvalidOperation("project already has the maximum of %d stages", MaxStatusCode)
	}

	stage := models.WorkflowStage{
		ProjectID:   projectID,
		Name:        opts.Name,
		Color:       opts.Color,
		Order:       len(stages),
		IsCompleted: opts.IsCompleted,
	}
	if stage.Color == "" {
		stage.Color = "#6b7280"
	}
	if err := db.Create(&stage).Error; err != nil {
		return nil, fmt.Errorf("workflow: create stage %q: %w", opts.Name, err)
	}
	return &stage, nil
}

// UpdateStage renames or recolors a stage; order changes go through
// ReorderStages.
func UpdateStage(db *gorm.DB, projectID, stageID uint, opts CreateOpts, actorID uuid.UUID) (*models.WorkflowStage, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageStages(role) {
		return nil, apperr.Authorization("role %s cannot manage workflow stages", role)
	}

	var stage models.WorkflowStage
	err = db.Where("id = ? AND project_id = ?", stageID, projectID).First(&stage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("workflow stage %d not found", stageID)
	}
	if err != nil {
		return nil, fmt.Errorf("workflow: get stage %d: %w", stageID, err)
	}

	if opts.Name != "" {
		stage.Name = opts.Name
	}
	if opts.Color != "" {
		stage.Color = opts.Color
	}
	stage.IsCompleted = opts.IsCompleted
	if err := db.Save(&stage).Error; err != nil {
		return nil, fmt.Errorf("workflow: update stage %d: %w", stageID, err)
	}
	return &stage, nil
}

// DeleteStage removes a stage that no task currently maps to. The remaining
// stages are re-compacted to keep orders contiguous; task status codes are
// left untouched, preserving the positional interpretation for whatever
// stages now occupy those ordinals.
func DeleteStage(db *gorm.DB, projectID, stageID uint, actorID uuid.UUID) error {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return err
	}
	if !auth.CanManageStages(role) {
		return apperr.Authorization("role %s cannot manage workflow stages", role)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var stage models.WorkflowStage
		err := tx.Where("id = ? AND project_id = ?", stageID, projectID).First(&stage).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("workflow stage %d not found", stageID)
		}
		if err != nil {
			return fmt.Errorf("workflow: get stage %d: %w", stageID, err)
		}

		count, err := TaskCountAtOrdinal(tx, projectID, stage.Order)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.InvalidOperation("stage %q still has %d task(s); move them before deleting", stage.Name, count)
		}

		if err := tx.Delete(&stage).Error; err != nil {
			return fmt.Errorf("workflow: delete stage %d: %w", stageID, err)
		}
		if err := tx.Model(&models.WorkflowStage{}).
			Where("project_id = ? AND stage_order > ?", projectID, stage.Order).
			UpdateColumn("stage_order", gorm.Expr("stage_order - 1")).Error; err != nil {
			return fmt.Errorf("workflow: compact stage orders: %w", err)
		}
		return nil
	})
}

// ReorderStages rewrites the stage order to match stageIDs and migrates
// every task's status code through the old-to-new ordinal mapping, so each
// task keeps pointing at the same stage it was in before the reorder.
func ReorderStages(db *gorm.DB, projectID uint, stageIDs []uint, actorID uuid.UUID) error {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return err
	}
	if !auth.CanManageStages(role) {
		return apperr.Authorization("role %s cannot manage workflow stages", role)
	}
	if len(stageIDs) == 0 {
		return apperr.Validation("stage order is required")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var stages []models.WorkflowStage
		if err := tx.Where("project_id = ? AND id IN ?", projectID, stageIDs).
			Find(&stages).Error; err != nil {
			return fmt.Errorf("workflow: load stages for reorder: %w", err)
		}
		if len(stages) != len(stageIDs) {
			return apperr.Validation("stage order must list every stage of the project exactly once")
		}

		byID := make(map[uint]*models.WorkflowStage, len(stages))
		for i := range stages {
			byID[stages[i].ID] = &stages[i]
		}

		oldToNew := make(map[int]int, len(stageIDs))
		for newOrder, id := range stageIDs {
			stage := byID[id]
			oldToNew[stage.Order] = newOrder
			if err := tx.Model(&models.WorkflowStage{}).
				Where("id = ?", stage.ID).
				UpdateColumn("stage_order", newOrder).Error; err != nil {
				return fmt.Errorf("workflow: reorder stage %d: %w", stage.ID, err)
			}
		}

		var tasks []models.Task
		if err := tx.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
			return fmt.Errorf("workflow: load tasks for migration: %w", err)
		}
		for i := range tasks {
			oldOrdinal := tasks[i].StatusCode - 1
			newOrdinal, ok := oldToNew[oldOrdinal]
			if !ok {
				continue
			}
			newCode := newOrdinal + 1
			if newCode > MaxStatusCode {
				newCode = MaxStatusCode
			}
			if newCode == tasks[i].StatusCode {
				continue
			}
			if err := tx.Model(&models.Task{}).
				Where("id = ?", tasks[i].ID).
				UpdateColumn("status_code", newCode).Error; err != nil {
				return fmt.Errorf("workflow: migrate task %d: %w", tasks[i].ID, err)
			}
		}
		return nil
	})
}
