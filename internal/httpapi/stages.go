package httpapi

import (
	"net/http"

	"boardhub/internal/workflow"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listStages(c *gin.Context) {
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

	stages, err := workflow.ListStages(h.db, projectID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	out := make([]StageResponse, len(stages))
	for i := range stages {
		count, err := workflow.TaskCountAtOrdinal(h.db, projectID, stages[i].Order)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		out[i] = stageResponse(&stages[i], count)
	}
	c.JSON(http.StatusOK, gin.H{"stages": out})
}

type stageRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsCompleted bool   `json:"isCompleted"`
}

func (h *handlers) createStage(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	stage, err := workflow.CreateStage(h.db, projectID, workflow.CreateOpts{
		Name:        req.Name,
		Color:       req.Color,
		IsCompleted: req.IsCompleted,
	}, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, stageResponse(stage, 0))
}

func (h *handlers) updateStage(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	stageID, ok := h.paramUint(c, "stageID")
	if !ok {
		return
	}
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	stage, err := workflow.UpdateStage(h.db, projectID, stageID, workflow.CreateOpts{
		Name:        req.Name,
		Color:       req.Color,
		IsCompleted: req.IsCompleted,
	}, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	count, err := workflow.TaskCountAtOrdinal(h.db, projectID, stage.Order)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stageResponse(stage, count))
}

func (h *handlers) deleteStage(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	stageID, ok := h.paramUint(c, "stageID")
	if !ok {
		return
	}
	if err := workflow.DeleteStage(h.db, projectID, stageID, id.UserID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderStagesRequest struct {
	StageIDs []uint `json:"stageIds"`
}

func (h *handlers) reorderStages(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	var req reorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	if err := workflow.ReorderStages(h.db, projectID, req.StageIDs, id.UserID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
