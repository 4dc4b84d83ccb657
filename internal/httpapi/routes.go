package httpapi

import (
	"net/http"
	"strconv"

	"boardhub/internal/apperr"
	"boardhub/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// registerRoutes wires every authenticated endpoint onto the api group.
func registerRoutes(api *gin.RouterGroup, db *gorm.DB, log *logrus.Logger) {
	h := &handlers{db: db, log: log}

	p := api.Group("/projects/:projectID")
	p.GET("/tasks", h.listTasks)
	p.POST("/tasks", h.createTask)
	p.GET("/tasks/:id", h.getTask)
	p.PUT("/tasks/:id", h.updateTask)
	p.DELETE("/tasks/:id", h.deleteTask)
	p.PUT("/tasks/:id/reorder", h.reorderTask)
	p.GET("/tasks/:id/activities", h.taskActivities)
	p.GET("/tasks/:id/comments", h.listComments)
	p.POST("/tasks/:id/comments", h.addComment)

	p.GET("/board", h.board)
	p.GET("/activities", h.projectActivities)

	p.GET("/stages", h.listStages)
	p.POST("/stages", h.createStage)
	p.POST("/stages/reorder", h.reorderStages)
	p.PUT("/stages/:stageID", h.updateStage)
	p.DELETE("/stages/:stageID", h.deleteStage)

	p.GET("/labels", h.listLabels)
	p.POST("/labels", h.createLabel)
	p.PUT("/labels/:labelID", h.updateLabel)
	p.DELETE("/labels/:labelID", h.deleteLabel)

	p.GET("/milestones", h.listMilestones)
	p.POST("/milestones", h.createMilestone)
	p.PUT("/milestones/:milestoneID", h.updateMilestone)
	p.DELETE("/milestones/:milestoneID", h.deleteMilestone)

	p.GET("/invitations", h.listInvitations)
	p.POST("/invitations", h.createInvitation)

	api.POST("/invitations/:token/accept", h.acceptInvitation)
	api.GET("/tasks/my", h.myTasks)
	api.GET("/tasks/statistics/:projectID", h.statistics)
}

type handlers struct {
	db  *gorm.DB
	log *logrus.Logger
}

// identity returns the authenticated actor. Middleware guarantees presence;
// a miss means a programming error in route wiring.
func (h *handlers) identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
	}
	return id, ok
}

// paramUint parses a numeric path parameter, writing a 400 on failure.
func (h *handlers) paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a number"})
		return 0, false
	}
	return uint(v), true
}

// queryInt parses an optional numeric query parameter, 0 when absent.
func queryInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

// requireView checks the actor may read the project.
func (h *handlers) requireView(projectID uint, userID uuid.UUID) error {
	role, err := auth.RoleOf(h.db, projectID, userID)
	if err != nil {
		return err
	}
	if !auth.CanView(role) {
		return apperr.Authorization("role %s cannot view this project", role)
	}
	return nil
}
