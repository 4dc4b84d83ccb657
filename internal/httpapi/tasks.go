package httpapi

import (
	"net/http"
	"time"

	"boardhub/internal/activity"
	"boardhub/internal/task"
	"boardhub/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createTaskRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssigneeID     *uuid.UUID `json:"assigneeId"`
	Status         int        `json:"status"`
	Position       *float64   `json:"position"`
	Priority       int        `json:"priority"`
	Type           string     `json:"type"`
	Labels         []string   `json:"labels"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *int       `json:"estimatedHours"`
}

func (h *handlers) createTask(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	created, err := task.Create(h.db, projectID, task.CreateOpts{
		Title:          req.Title,
		Description:    req.Description,
		AssigneeID:     req.AssigneeID,
		StatusCode:     req.Status,
		Position:       req.Position,
		Priority:       req.Priority,
		Type:           req.Type,
		Labels:         req.Labels,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	}, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	p, err := newProjector(h.db, projectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p.task(created))
}

type updateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	AssigneeID     *uuid.UUID `json:"assigneeId"`
	ClearAssignee  bool       `json:"clearAssignee"`
	Status         *int       `json:"status"`
	Position       *float64   `json:"position"`
	Priority       *int       `json:"priority"`
	Type           *string    `json:"type"`
	Labels         []string   `json:"labels"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *int       `json:"estimatedHours"`
}

func (h *handlers) updateTask(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	taskID, ok := h.paramUint(c, "id")
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	updated, err := task.Update(h.db, taskID, task.UpdateOpts{
		Title:          req.Title,
		Description:    req.Description,
		AssigneeID:     req.AssigneeID,
		ClearAssignee:  req.ClearAssignee,
		StatusCode:     req.Status,
		Position:       req.Position,
		Priority:       req.Priority,
		Type:           req.Type,
		Labels:         req.Labels,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	}, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	p, err := newProjector(h.db, updated.ProjectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p.task(updated))
}

type reorderTaskRequest struct {
	Status   int     `json:"status"`
	Position float64 `json:"position"`
}

func (h *handlers) reorderTask(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	taskID, ok := h.paramUint(c, "id")
	if !ok {
		return
	}
	var req reorderTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	moved, err := task.Reorder(h.db, taskID, req.Status, req.Position, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	p, err := newProjector(h.db, moved.ProjectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p.task(moved))
}

func (h *handlers) getTask(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	taskID, ok := h.paramUint(c, "id")
	if !ok {
		return
	}

	t, err := task.Get(h.db, taskID, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	p, err := newProjector(h.db, t.ProjectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p.task(t))
}

func (h *handlers) deleteTask(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	taskID, ok := h.paramUint(c, "id")
	if !ok {
		return
	}
	if err := task.Delete(h.db, taskID, id.UserID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listTasks(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}

	filters := task.ListFilters{
		Search:     c.Query("search"),
		StatusCode: queryInt(c, "status"),
		Priority:   queryInt(c, "priority"),
		Type:       c.Query("type"),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "pageSize"),
	}
	if raw := c.Query("assignee"); raw != "" {
		assignee, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignee must be a uuid"})
			return
		}
		filters.AssigneeID = &assignee
	}

	tasks, total, err := task.ListForProject(h.db, projectID, filters, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	p, err := newProjector(h.db, projectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks":      p.tasks(tasks),
		"pagination": pagination{Page: page, PageSize: pageSize, Total: total},
	})
}

func (h *handlers) board(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}

	columns, err := task.Board(h.db, projectID, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	p, err := newProjector(h.db, projectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp := BoardResponse{Columns: make([]BoardColumn, len(columns))}
	for i, col := range columns {
		resp.Columns[i] = BoardColumn{
			ID:     col.Stage.ID,
			Title:  col.Stage.Name,
			Status: col.Stage.Order + 1,
			Color:  col.Stage.Color,
			Tasks:  p.tasks(col.Tasks),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) myTasks(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	tasks, err := task.ListMine(h.db, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	// Tasks span projects, so each is projected against its own stage list.
	out := make([]TaskProjection, 0, len(tasks))
	projectors := make(map[uint]*projector)
	for i := range tasks {
		p, ok := projectors[tasks[i].ProjectID]
		if !ok {
			var err error
			p, err = newProjector(h.db, tasks[i].ProjectID)
			if err != nil {
				writeError(c, h.log, err)
				return
			}
			projectors[tasks[i].ProjectID] = p
		}
		out = append(out, p.task(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

func (h *handlers) statistics(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}

	stats, err := task.ProjectStatistics(h.db, projectID, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	stages, err := workflow.Stages(h.db, projectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	byStatus := make(map[string]int64, len(stats.ByStatus))
	for code, count := range stats.ByStatus {
		byStatus[workflow.NameIn(stages, code)] = count
	}
	c.JSON(http.StatusOK, gin.H{
		"total":      stats.Total,
		"completed":  stats.Completed,
		"overdue":    stats.Overdue,
		"byStatus":   byStatus,
		"byPriority": stats.ByPriority,
	})
}

func (h *handlers) taskActivities(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	taskID, ok := h.paramUint(c, "id")
	if !ok {
		return
	}

	// Get enforces view permission on the task's project.
	if _, err := task.Get(h.db, taskID, id.UserID); err != nil {
		writeError(c, h.log, err)
		return
	}
	records, err := activity.ForTask(h.db, taskID, queryInt(c, "limit"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]ActivityResponse, len(records))
	for i := range records {
		out[i] = activityResponse(&records[i])
	}
	c.JSON(http.StatusOK, gin.H{"activities": out})
}

func (h *handlers) projectActivities(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}

	if err := h.requireView(projectID, id.UserID); err != nil {
		writeError(c, h.log, err)
		return
	}

	page := queryInt(c, "page")
	pageSize := queryInt(c, "pageSize")
	records, total, err := activity.ForProject(h.db, projectID, page, pageSize, c.Query("type"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]ActivityResponse, len(records))
	for i := range records {
		out[i] = activityResponse(&records[i])
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	c.JSON(http.StatusOK, gin.H{
		"activities": out,
		"pagination": pagination{Page: page, PageSize: pageSize, Total: total},
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *handlers) addComment(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	taskID, ok := h.paramUint(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	comment, err := task.AddComment(h.db, taskID, req.Content, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, commentResponse(comment))
}

func (h *handlers) listComments(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	taskID, ok := h.paramUint(c, "id")
	if !ok {
		return
	}

	comments, err := task.ListComments(h.db, taskID, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = commentResponse(&comments[i])
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}
