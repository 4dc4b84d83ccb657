package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boardhub/internal/auth"
	"boardhub/internal/db"
	"boardhub/internal/models"
	"boardhub/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

var (
	ownerID  = uuid.New()
	viewerID = uuid.New()
)

func testRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	proj := models.Project{ID: 1, PublicID: uuid.New(), Name: "Apollo", OwnerID: ownerID}
	if err := gdb.Create(&proj).Error; err != nil {
		t.Fatal(err)
	}
	users := []models.User{
		{ID: ownerID, Email: "owner@example.com", UserName: "owner"},
		{ID: viewerID, Email: "viewer@example.com", UserName: "viewer"},
	}
	if err := gdb.Create(&users).Error; err != nil {
		t.Fatal(err)
	}
	participants := []models.ProjectParticipant{
		{ProjectID: 1, UserID: ownerID, Role: models.RoleOwner},
		{ProjectID: 1, UserID: viewerID, Role: models.RoleViewer},
	}
	if err := gdb.Create(&participants).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := workflow.ListStages(gdb, 1); err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	router := Router(Options{DB: gdb, Auth: auth.Options{Secret: testSecret}, Log: log})
	return router, gdb
}

func signToken(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/projects/1/board", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCreateAndReorderTask(t *testing.T) {
	router, _ := testRouter(t)
	token := signToken(t, ownerID, "owner@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/projects/1/tasks", token, gin.H{
		"title": "ship the release", "status": 2, "priority": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created TaskProjection
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.StatusName != "In Progress" {
		t.Errorf("StatusName = %q, want In Progress", created.StatusName)
	}
	if created.Position != 1000 {
		t.Errorf("Position = %v, want 1000", created.Position)
	}

	// Move to Done.
	path := fmt.Sprintf("/api/projects/1/tasks/%d/reorder", created.ID)
	w = doJSON(t, router, http.MethodPut, path, token, gin.H{"status": 4, "position": 1500.0})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder status = %d, body %s", w.Code, w.Body.String())
	}
	var moved TaskProjection
	if err := json.Unmarshal(w.Body.Bytes(), &moved); err != nil {
		t.Fatal(err)
	}
	if moved.Status != 4 || moved.StatusName != "Done" || moved.Position != 1500 {
		t.Errorf("moved = %d/%q/%v, want 4/Done/1500", moved.Status, moved.StatusName, moved.Position)
	}
}

func TestErrorMapping(t *testing.T) {
	router, gdb := testRouter(t)
	ownerToken := signToken(t, ownerID, "owner@example.com")
	viewerToken := signToken(t, viewerID, "viewer@example.com")

	// A task at In Progress keeps that stage occupied for the 409 case.
	w := doJSON(t, router, http.MethodPost, "/api/projects/1/tasks", ownerToken, gin.H{
		"title": "blocker", "status": 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatal(w.Body.String())
	}

	var stage models.WorkflowStage
	if err := gdb.Where("project_id = ? AND stage_order = ?", 1, 1).First(&stage).Error; err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"validation 400", http.MethodPost, "/api/projects/1/tasks", ownerToken, gin.H{"title": ""}, http.StatusBadRequest},
		{"authorization 403", http.MethodPost, "/api/projects/1/tasks", viewerToken, gin.H{"title": "nope"}, http.StatusForbidden},
		{"not found 404", http.MethodGet, "/api/projects/1/tasks/9999", ownerToken, nil, http.StatusNotFound},
		{"conflict 409", http.MethodDelete, fmt.Sprintf("/api/projects/1/stages/%d", stage.ID), ownerToken, nil, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestBoardResponseShape(t *testing.T) {
	router, _ := testRouter(t)
	token := signToken(t, ownerID, "owner@example.com")

	for _, title := range []string{"one", "two"} {
		w := doJSON(t, router, http.MethodPost, "/api/projects/1/tasks", token, gin.H{"title": title})
		if w.Code != http.StatusCreated {
			t.Fatal(w.Body.String())
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/projects/1/board", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("board status = %d", w.Code)
	}
	var board BoardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &board); err != nil {
		t.Fatal(err)
	}
	if len(board.Columns) != 4 {
		t.Fatalf("columns = %d, want 4", len(board.Columns))
	}
	if board.Columns[0].Title != "To Do" || board.Columns[0].Status != 1 {
		t.Errorf("first column = %q/%d, want To Do/1", board.Columns[0].Title, board.Columns[0].Status)
	}
	if len(board.Columns[0].Tasks) != 2 {
		t.Errorf("To Do tasks = %d, want 2", len(board.Columns[0].Tasks))
	}
	if board.Columns[0].Tasks[0].Position != 1000 || board.Columns[0].Tasks[1].Position != 2000 {
		t.Error("tasks should carry ladder positions in order")
	}
}

func TestTaskActivitiesEndpoint(t *testing.T) {
	router, _ := testRouter(t)
	token := signToken(t, ownerID, "owner@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/projects/1/tasks", token, gin.H{"title": "watched"})
	if w.Code != http.StatusCreated {
		t.Fatal(w.Body.String())
	}
	var created TaskProjection
	json.Unmarshal(w.Body.Bytes(), &created)

	path := fmt.Sprintf("/api/projects/1/tasks/%d/reorder", created.ID)
	if w := doJSON(t, router, http.MethodPut, path, token, gin.H{"status": 4, "position": 1000.0}); w.Code != http.StatusOK {
		t.Fatal(w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/1/tasks/%d/activities", created.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("activities status = %d", w.Code)
	}
	var resp struct {
		Activities []ActivityResponse `json:"activities"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Activities) != 2 {
		t.Fatalf("activities = %d, want 2 (created + status change)", len(resp.Activities))
	}
	if resp.Activities[0].ActivityType != models.ActivityStatusChange {
		t.Errorf("newest = %q, want status_change", resp.Activities[0].ActivityType)
	}
	if resp.Activities[0].OldValue == nil || *resp.Activities[0].OldValue != "To Do" {
		t.Errorf("OldValue = %v, want To Do", resp.Activities[0].OldValue)
	}
}

func TestInvitationFlow(t *testing.T) {
	router, gdb := testRouter(t)
	ownerToken := signToken(t, ownerID, "owner@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/projects/1/invitations", ownerToken, gin.H{
		"email": "new@example.com", "role": "editor",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("invite status = %d, body %s", w.Code, w.Body.String())
	}

	var inv models.ProjectInvitation
	if err := gdb.Where("invitee_email = ?", "new@example.com").First(&inv).Error; err != nil {
		t.Fatal(err)
	}

	newUser := uuid.New()
	if err := gdb.Create(&models.User{ID: newUser, Email: "new@example.com", UserName: "new"}).Error; err != nil {
		t.Fatal(err)
	}
	newToken := signToken(t, newUser, "new@example.com")
	w = doJSON(t, router, http.MethodPost, "/api/invitations/"+inv.Token.String()+"/accept", newToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept status = %d, body %s", w.Code, w.Body.String())
	}

	// The new editor can now create a task.
	w = doJSON(t, router, http.MethodPost, "/api/projects/1/tasks", newToken, gin.H{"title": "first contribution"})
	if w.Code != http.StatusCreated {
		t.Errorf("new editor create status = %d, body %s", w.Code, w.Body.String())
	}
}
