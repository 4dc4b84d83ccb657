// Package activity appends and queries the immutable audit trail. Every
// qualifying task mutation produces exactly one record; the diff policy
// picks which tracked field the record describes.
package activity

import (
	"fmt"

	"boardhub/internal/models"
	"boardhub/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// priorityLabels maps the fixed 1–4 priority scale to display strings.
var priorityLabels = map[int]string{
	1: "Low",
	2: "Medium",
	3: "High",
	4: "Critical",
}

// PriorityLabel returns the display label for a priority value.
func PriorityLabel(p int) string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return fmt.Sprintf("Priority %d", p)
}

// Record appends one immutable activity row. Rows are never updated or
// deleted afterwards.
func Record(db *gorm.DB, rec models.TaskActivity) error {
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("activity: record %s for task %d: %w", rec.ActivityType, rec.TaskID, err)
	}
	return nil
}

// RecordCreated logs task creation, bypassing the diff policy.
func RecordCreated(db *gorm.DB, task *models.Task, actorID uuid.UUID) error {
	return Record(db, models.TaskActivity{
		TaskID:       task.ID,
		ProjectID:    task.ProjectID,
		UserID:       actorID,
		ActivityType: models.ActivityCreated,
		Description:  fmt.Sprintf("created task %q", task.Title),
	})
}

// RecordDeleted logs task deletion. Callers emit this before removing the
// task row so collaborators holding a stale feed still see the entry.
func RecordDeleted(db *gorm.DB, task *models.Task, actorID uuid.UUID) error {
	return Record(db, models.TaskActivity{
		TaskID:       task.ID,
		ProjectID:    task.ProjectID,
		UserID:       actorID,
		ActivityType: models.ActivityDeleted,
		Description:  fmt.Sprintf("deleted task %q", task.Title),
	})
}

// RecordComment logs a comment, bypassing the diff policy.
func RecordComment(db *gorm.DB, task *models.Task, actorID uuid.UUID) error {
	return Record(db, models.TaskActivity{
		TaskID:       task.ID,
		ProjectID:    task.ProjectID,
		UserID:       actorID,
		ActivityType: models.ActivityComment,
		Description:  fmt.Sprintf("commented on %q", task.Title),
	})
}

// RecordDiff compares before/after snapshots of a successful mutation and
// appends exactly one record. Precedence: status, then assignee, then
// priority; anything else collapses into a generic updated record. Only the
// first matching rule fires even when several tracked fields changed at
// once.
func RecordDiff(db *gorm.DB, before, after *models.Task, actorID uuid.UUID) error {
	switch {
	case before.StatusCode != after.StatusCode:
		oldName, err := workflow.DisplayName(db, before.ProjectID, before.StatusCode)
		if err != nil {
			return err
		}
		newName, err := workflow.DisplayName(db, after.ProjectID, after.StatusCode)
		if err != nil {
			return err
		}
		return Record(db, models.TaskActivity{
			TaskID:       after.ID,
			ProjectID:    after.ProjectID,
			UserID:       actorID,
			ActivityType: models.ActivityStatusChange,
			Description:  fmt.Sprintf("moved %q from %s to %s", after.Title, oldName, newName),
			OldValue:     &oldName,
			NewValue:     &newName,
		})

	case !assigneeEqual(before.AssigneeID, after.AssigneeID):
		oldName := assigneeName(db, before.AssigneeID)
		newName := assigneeName(db, after.AssigneeID)
		return Record(db, models.TaskActivity{
			TaskID:       after.ID,
			ProjectID:    after.ProjectID,
			UserID:       actorID,
			ActivityType: models.ActivityAssigneeChange,
			Description:  fmt.Sprintf("reassigned %q from %s to %s", after.Title, oldName, newName),
			OldValue:     &oldName,
			NewValue:     &newName,
		})

	case before.Priority != after.Priority:
		oldLabel := PriorityLabel(before.Priority)
		newLabel := PriorityLabel(after.Priority)
		return Record(db, models.TaskActivity{
			TaskID:       after.ID,
			ProjectID:    after.ProjectID,
			UserID:       actorID,
			ActivityType: models.ActivityPriorityChange,
			Description:  fmt.Sprintf("changed priority of %q from %s to %s", after.Title, oldLabel, newLabel),
			OldValue:     &oldLabel,
			NewValue:     &newLabel,
		})

	default:
		return Record(db, models.TaskActivity{
			TaskID:       after.ID,
			ProjectID:    after.ProjectID,
			UserID:       actorID,
			ActivityType: models.ActivityUpdated,
			Description:  fmt.Sprintf("updated task %q", after.Title),
		})
	}
}

func assigneeEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// assigneeName resolves a user's display name, or "Unassigned" for nil.
// Lookup failures degrade to the raw id rather than failing the mutation.
func assigneeName(db *gorm.DB, id *uuid.UUID) string {
	if id == nil {
		return "Unassigned"
	}
	var user models.User
	if err := db.Where("id = ?", *id).First(&user).Error; err != nil {
		return id.String()
	}
	return user.UserName
}

// DefaultTaskFeedLimit caps the per-task activity feed.
const DefaultTaskFeedLimit = 50

// ForTask returns a task's activities newest-first, capped at limit
// (DefaultTaskFeedLimit when limit <= 0).
func ForTask(db *gorm.DB, taskID uint, limit int) ([]models.TaskActivity, error) {
	if limit <= 0 {
		limit = DefaultTaskFeedLimit
	}
	var records []models.TaskActivity
	if err := db.Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("activity: list for task %d: %w", taskID, err)
	}
	return records, nil
}

// ForProject returns a project's activities newest-first, paginated.
// typeFilter narrows to one activity type; "" or "all" disables filtering.
func ForProject(db *gorm.DB, projectID uint, page, pageSize int, typeFilter string) ([]models.TaskActivity, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	q := db.Model(&models.TaskActivity{}).Where("project_id = ?", projectID)
	if typeFilter != "" && typeFilter != "all" {
		q = q.Where("activity_type = ?", typeFilter)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("activity: count for project %d: %w", projectID, err)
	}

	var records []models.TaskActivity
	if err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("activity: list for project %d: %w", projectID, err)
	}
	return records, total, nil
}
