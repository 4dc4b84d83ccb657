package httpapi

import (
	"time"

	"boardhub/internal/models"
	"boardhub/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskProjection is the wire shape of a task: raw fields plus the resolved
// status display name and assignee name, so clients never re-derive them.
type TaskProjection struct {
	ID             uint       `json:"id"`
	ProjectID      uint       `json:"projectId"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         int        `json:"status"`
	StatusName     string     `json:"statusName"`
	Position       float64    `json:"position"`
	Priority       int        `json:"priority"`
	Type           string     `json:"type"`
	Labels         []string   `json:"labels,omitempty"`
	AssigneeID     *uuid.UUID `json:"assigneeId,omitempty"`
	AssigneeName   string     `json:"assigneeName,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	EstimatedHours *int       `json:"estimatedHours,omitempty"`
	CreatedByID    uuid.UUID  `json:"createdById"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// StageResponse is the wire shape of a workflow stage, including how many
// tasks currently resolve to its ordinal.
type StageResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Order       int    `json:"order"`
	IsDefault   bool   `json:"isDefault"`
	IsCompleted bool   `json:"isCompleted"`
	TaskCount   int64  `json:"taskCount"`
}

// BoardColumn is one column of the board response.
type BoardColumn struct {
	ID     uint             `json:"id"`
	Title  string           `json:"title"`
	Status int              `json:"status"`
	Color  string           `json:"color"`
	Tasks  []TaskProjection `json:"tasks"`
}

// BoardResponse is the full board: one column per configured stage.
type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
}

// ActivityResponse is the wire shape of one audit record.
type ActivityResponse struct {
	ID           uint      `json:"id"`
	TaskID       uint      `json:"taskId"`
	UserID       uuid.UUID `json:"userId"`
	ActivityType string    `json:"activityType"`
	Description  string    `json:"description,omitempty"`
	OldValue     *string   `json:"oldValue,omitempty"`
	NewValue     *string   `json:"newValue,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CommentResponse is the wire shape of one comment.
type CommentResponse struct {
	ID        uint       `json:"id"`
	TaskID    uint       `json:"taskId"`
	UserID    uuid.UUID  `json:"userId"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// projector resolves display names against one snapshot of a project's
// stages and a per-request user-name cache.
type projector struct {
	db     *gorm.DB
	stages []models.WorkflowStage
	names  map[uuid.UUID]string
}

func newProjector(db *gorm.DB, projectID uint) (*projector, error) {
	stages, err := workflow.Stages(db, projectID)
	if err != nil {
		return nil, err
	}
	return &projector{db: db, stages: stages, names: make(map[uuid.UUID]string)}, nil
}

func (p *projector) userName(id uuid.UUID) string {
	if name, ok := p.names[id]; ok {
		return name
	}
	var user models.User
	name := id.String()
	if err := p.db.Where("id = ?", id).First(&user).Error; err == nil {
		name = user.UserName
	}
	p.names[id] = name
	return name
}

func (p *projector) task(t *models.Task) TaskProjection {
	proj := TaskProjection{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.StatusCode,
		StatusName:     workflow.NameIn(p.stages, t.StatusCode),
		Position:       t.Position,
		Priority:       t.Priority,
		Type:           t.Type,
		Labels:         t.LabelList(),
		AssigneeID:     t.AssigneeID,
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		CreatedByID:    t.CreatedByID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		proj.AssigneeName = p.userName(*t.AssigneeID)
	}
	return proj
}

func (p *projector) tasks(ts []models.Task) []TaskProjection {
	out := make([]TaskProjection, len(ts))
	for i := range ts {
		out[i] = p.task(&ts[i])
	}
	return out
}

func activityResponse(rec *models.TaskActivity) ActivityResponse {
	return ActivityResponse{
		ID:           rec.ID,
		TaskID:       rec.TaskID,
		UserID:       rec.UserID,
		ActivityType: rec.ActivityType,
		Description:  rec.Description,
		OldValue:     rec.OldValue,
		NewValue:     rec.NewValue,
		CreatedAt:    rec.CreatedAt,
	}
}

func commentResponse(c *models.TaskComment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func stageResponse(s *models.WorkflowStage, taskCount int64) StageResponse {
	return StageResponse{
		ID:          s.ID,
		Name:        s.Name,
		Color:       s.Color,
		Order:       s.Order,
		IsDefault:   s.IsDefault,
		IsCompleted: s.IsCompleted,
		TaskCount:   taskCount,
	}
}

// pagination is the envelope for paginated list responses.
type pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}
