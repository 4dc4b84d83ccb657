package httpapi

import (
	"net/http"
	"time"

	"boardhub/internal/models"
	"boardhub/internal/project"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *handlers) listLabels(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	labels, err := project.Labels(h.db, projectID, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

type labelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *handlers) createLabel(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	label, err := project.CreateLabel(h.db, projectID, req.Name, req.Color, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *handlers) updateLabel(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	labelID, ok := h.paramUint(c, "labelID")
	if !ok {
		return
	}
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	label, err := project.RenameLabel(h.db, projectID, labelID, req.Name, req.Color, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *handlers) deleteLabel(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	labelID, ok := h.paramUint(c, "labelID")
	if !ok {
		return
	}
	if err := project.DeleteLabel(h.db, projectID, labelID, id.UserID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listMilestones(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	milestones, err := project.Milestones(h.db, projectID, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

type milestoneRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	IsCompleted bool       `json:"isCompleted"`
}

func (h *handlers) createMilestone(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	milestone, err := project.CreateMilestone(h.db, projectID, project.MilestoneOpts{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		IsCompleted: req.IsCompleted,
	}, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

func (h *handlers) updateMilestone(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	milestoneID, ok := h.paramUint(c, "milestoneID")
	if !ok {
		return
	}
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	milestone, err := project.UpdateMilestone(h.db, projectID, milestoneID, project.MilestoneOpts{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		IsCompleted: req.IsCompleted,
	}, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *handlers) deleteMilestone(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	milestoneID, ok := h.paramUint(c, "milestoneID")
	if !ok {
		return
	}
	if err := project.DeleteMilestone(h.db, projectID, milestoneID, id.UserID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listInvitations(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	invitations, err := project.Invitations(h.db, projectID, id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

type invitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *handlers) createInvitation(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	projectID, ok := h.paramUint(c, "projectID")
	if !ok {
		return
	}
	var req invitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	invitation, err := project.Invite(h.db, projectID, req.Email, models.ParticipantRole(req.Role), id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, invitation)
}

func (h *handlers) acceptInvitation(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token must be a uuid"})
		return
	}
	participant, err := project.Accept(h.db, token, id.UserID, id.Email)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}
