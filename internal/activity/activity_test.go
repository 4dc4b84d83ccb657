package activity

import (
	"testing"
	"time"

	"boardhub/internal/db"
	"boardhub/internal/models"
	"boardhub/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var actorID = uuid.New()

func testDB(t *testing.T) *gorm.DB {
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
	project := models.Project{ID: 1, PublicID: uuid.New(), Name: "Apollo", OwnerID: actorID}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := workflow.ListStages(gdb, 1); err != nil {
		t.Fatal(err)
	}
	return gdb
}

func seedTask(t *testing.T, gdb *gorm.DB, code int) *models.Task {
	t.Helper()
	task := models.Task{ProjectID: 1, Title: "refactor parser", StatusCode: code, Position: 1000, Priority: 2, CreatedByID: actorID}
	if err := gdb.Create(&task).Error; err != nil {
		t.Fatal(err)
	}
	return &task
}

func lastRecord(t *testing.T, gdb *gorm.DB, taskID uint) models.TaskActivity {
	t.Helper()
	records, err := ForTask(gdb, taskID, 0)
	if err != nil {
		t.Fatalf("ForTask: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("no activity records")
	}
	return records[0]
}

func TestRecordDiff_StatusChange(t *testing.T) {
	gdb := testDB(t)
	before := seedTask(t, gdb, 2)
	after := *before
	after.StatusCode = 4

	if err := RecordDiff(gdb, before, &after, actorID); err != nil {
		t.Fatalf("RecordDiff: %v", err)
	}

	rec := lastRecord(t, gdb, before.ID)
	if rec.ActivityType != models.ActivityStatusChange {
		t.Fatalf("type = %q, want status_change", rec.ActivityType)
	}
	if rec.OldValue == nil || *rec.OldValue != "In Progress" {
		t.Errorf("OldValue = %v, want In Progress", rec.OldValue)
	}
	if rec.NewValue == nil || *rec.NewValue != "Done" {
		t.Errorf("NewValue = %v, want Done", rec.NewValue)
	}
}

func TestRecordDiff_PrecedenceStatusWins(t *testing.T) {
	gdb := testDB(t)
	before := seedTask(t, gdb, 1)
	assignee := uuid.New()
	after := *before
	after.StatusCode = 2
	after.AssigneeID = &assignee
	after.Priority = 4

	if err := RecordDiff(gdb, before, &after, actorID); err != nil {
		t.Fatalf("RecordDiff: %v", err)
	}

	records, err := ForTask(gdb, before.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want exactly 1", len(records))
	}
	if records[0].ActivityType != models.ActivityStatusChange {
		t.Errorf("type = %q, want status_change (first precedence rule)", records[0].ActivityType)
	}
}

func TestRecordDiff_AssigneeChange(t *testing.T) {
	gdb := testDB(t)
	before := seedTask(t, gdb, 1)

	bob := models.User{ID: uuid.New(), Email: "bob@example.com", UserName: "bob"}
	if err := gdb.Create(&bob).Error; err != nil {
		t.Fatal(err)
	}
	after := *before
	after.AssigneeID = &bob.ID

	if err := RecordDiff(gdb, before, &after, actorID); err != nil {
		t.Fatalf("RecordDiff: %v", err)
	}

	rec := lastRecord(t, gdb, before.ID)
	if rec.ActivityType != models.ActivityAssigneeChange {
		t.Fatalf("type = %q, want assignee_change", rec.ActivityType)
	}
	if rec.OldValue == nil || *rec.OldValue != "Unassigned" {
		t.Errorf("OldValue = %v, want Unassigned", rec.OldValue)
	}
	if rec.NewValue == nil || *rec.NewValue != "bob" {
		t.Errorf("NewValue = %v, want bob", rec.NewValue)
	}
}

func TestRecordDiff_PriorityChange(t *testing.T) {
	gdb := testDB(t)
	before := seedTask(t, gdb, 1)
	after := *before
	after.Priority = 4

	if err := RecordDiff(gdb, before, &after, actorID); err != nil {
		t.Fatalf("RecordDiff: %v", err)
	}

	rec := lastRecord(t, gdb, before.ID)
	if rec.ActivityType != models.ActivityPriorityChange {
		t.Fatalf("type = %q, want priority_change", rec.ActivityType)
	}
	if rec.OldValue == nil || *rec.OldValue != "Medium" || rec.NewValue == nil || *rec.NewValue != "Critical" {
		t.Errorf("old/new = %v/%v, want Medium/Critical", rec.OldValue, rec.NewValue)
	}
}

func TestRecordDiff_GenericUpdate(t *testing.T) {
	gdb := testDB(t)
	before := seedTask(t, gdb, 1)
	after := *before
	after.Title = "refactor parser properly"
	after.Description = "the recursive descent kind"

	if err := RecordDiff(gdb, before, &after, actorID); err != nil {
		t.Fatalf("RecordDiff: %v", err)
	}

	records, err := ForTask(gdb, before.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want exactly 1", len(records))
	}
	rec := records[0]
	if rec.ActivityType != models.ActivityUpdated {
		t.Errorf("type = %q, want updated", rec.ActivityType)
	}
	if rec.OldValue != nil || rec.NewValue != nil {
		t.Error("generic updated record should carry no old/new payload")
	}
}

func TestForTask_NewestFirstAndCapped(t *testing.T) {
	gdb := testDB(t)
	task := seedTask(t, gdb, 1)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 60; i++ {
		rec := models.TaskActivity{
			TaskID:       task.ID,
			ProjectID:    1,
			UserID:       actorID,
			ActivityType: models.ActivityUpdated,
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		}
		if err := gdb.Create(&rec).Error; err != nil {
			t.Fatal(err)
		}
	}

	records, err := ForTask(gdb, task.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != DefaultTaskFeedLimit {
		t.Fatalf("len = %d, want cap %d", len(records), DefaultTaskFeedLimit)
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Fatalf("records not newest-first at index %d", i)
		}
	}
}

func TestForProject_PaginationAndFilter(t *testing.T) {
	gdb := testDB(t)
	task := seedTask(t, gdb, 1)

	base := time.Now().Add(-time.Hour)
	types := []string{models.ActivityCreated, models.ActivityUpdated, models.ActivityStatusChange, models.ActivityUpdated, models.ActivityComment}
	for i, at := range types {
		rec := models.TaskActivity{
			TaskID: task.ID, ProjectID: 1, UserID: actorID,
			ActivityType: at,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := gdb.Create(&rec).Error; err != nil {
			t.Fatal(err)
		}
	}

	records, total, err := ForProject(gdb, 1, 1, 2, "all")
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(records) != 2 {
		t.Errorf("page len = %d, want 2", len(records))
	}
	if records[0].ActivityType != models.ActivityComment {
		t.Errorf("newest = %q, want comment", records[0].ActivityType)
	}

	updated, total, err := ForProject(gdb, 1, 1, 10, models.ActivityUpdated)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(updated) != 2 {
		t.Errorf("filtered total/len = %d/%d, want 2/2", total, len(updated))
	}
}

func TestPriorityLabel(t *testing.T) {
	tests := []struct {
		p    int
		want string
	}{
		{1, "Low"}, {2, "Medium"}, {3, "High"}, {4, "Critical"}, {7, "Priority 7"},
	}
	for _, tt := range tests {
		if got := PriorityLabel(tt.p); got != tt.want {
			t.Errorf("PriorityLabel(%d) = %q, want %q", tt.p, got, tt.want)
		}
	}
}
