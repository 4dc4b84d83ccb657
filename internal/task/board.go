package task

import (
	"fmt"
	"strings"
	"time"

	"boardhub/internal/apperr"
	"boardhub/internal/auth"
	"boardhub/internal/models"
	"boardhub/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters narrows ListForProject. Zero values disable a filter.
type ListFilters struct {
	Search     string
	StatusCode int
	AssigneeID *uuid.UUID
	Priority   int
	Type       string
	DueAfter   *time.Time
	DueBefore  *time.Time
	Page       int
	PageSize   int
}

// ListForProject returns a filtered page of a project's tasks ordered by
// position within the board, newest-first among equals.
func ListForProject(db *gorm.DB, projectID uint, filters ListFilters, actorID uuid.UUID) ([]models.Task, int64, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !auth.CanView(role) {
		return nil, 0, apperr.Authorization("role %s cannot view tasks", role)
	}

	q := db.Model(&models.Task{}).Where("project_id = ?", projectID)
	if s := strings.TrimSpace(filters.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if filters.StatusCode != 0 {
		q = q.Where("status_code = ?", filters.StatusCode)
	}
	if filters.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *filters.AssigneeID)
	}
	if filters.Priority != 0 {
		q = q.Where("priority = ?", filters.Priority)
	}
	if filters.Type != "" {
		q = q.Where("type = ?", filters.Type)
	}
	if filters.DueAfter != nil {
		q = q.Where("due_date >= ?", *filters.DueAfter)
	}
	if filters.DueBefore != nil {
		q = q.Where("due_date <= ?", *filters.DueBefore)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("task: count for project %d: %w", projectID, err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var tasks []models.Task
	if err := q.Order("position ASC, created_at DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error; err != nil {
		return nil, 0, fmt.Errorf("task: list for project %d: %w", projectID, err)
	}
	return tasks, total, nil
}

// ListMine returns every task assigned to the user across all projects,
// most urgent first.
func ListMine(db *gorm.DB, userID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("assignee_id = ?", userID).
		Order("due_date ASC, priority DESC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list assigned to %s: %w", userID, err)
	}
	return tasks, nil
}

// Column is one board column: the stage occupying an ordinal and the tasks
// whose status code resolves to it, ordered by position.
type Column struct {
	Stage models.WorkflowStage
	Tasks []models.Task
}

// Board groups a project's tasks into one column per configured stage, in
// stage order. Tasks whose code points past the stage list land in the last
// column so they stay visible instead of vanishing.
func Board(db *gorm.DB, projectID uint, actorID uuid.UUID) ([]Column, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanView(role) {
		return nil, apperr.Authorization("role %s cannot view the board", role)
	}

	stages, err := workflow.ListStages(db, projectID)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := db.Where("project_id = ?", projectID).
		Order("position ASC, created_at DESC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: load board for project %d: %w", projectID, err)
	}

	columns := make([]Column, len(stages))
	for i, stage := range stages {
		columns[i] = Column{Stage: stage, Tasks: []models.Task{}}
	}
	for _, t := range tasks {
		idx := t.StatusCode - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(columns) {
			idx = len(columns) - 1
		}
		columns[idx].Tasks = append(columns[idx].Tasks, t)
	}
	return columns, nil
}

// Statistics summarizes a project's tasks for dashboards.
type Statistics struct {
	Total      int64
	Completed  int64
	Overdue    int64
	ByStatus   map[int]int64
	ByPriority map[int]int64
}

// ProjectStatistics computes task counts for a project. Completed means the
// task's code resolves to a stage flagged IsCompleted.
func ProjectStatistics(db *gorm.DB, projectID uint, actorID uuid.UUID) (*Statistics, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanView(role) {
		return nil, apperr.Authorization("role %s cannot view statistics", role)
	}

	stages, err := workflow.ListStages(db, projectID)
	if err != nil {
		return nil, err
	}
	completedCodes := make([]int, 0, 1)
	for i, stage := range stages {
		if stage.IsCompleted {
			completedCodes = append(completedCodes, i+1)
		}
	}

	stats := &Statistics{
		ByStatus:   make(map[int]int64),
		ByPriority: make(map[int]int64),
	}

	var tasks []models.Task
	if err := db.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: load statistics for project %d: %w", projectID, err)
	}

	now := time.Now()
	completed := make(map[int]bool, len(completedCodes))
	for _, code := range completedCodes {
		completed[code] = true
	}
	for _, t := range tasks {
		stats.Total++
		stats.ByStatus[t.StatusCode]++
		stats.ByPriority[t.Priority]++
		if completed[t.StatusCode] {
			stats.Completed++
		} else if t.DueDate != nil && t.DueDate.Before(now) {
			stats.Overdue++
		}
	}
	return stats, nil
}
