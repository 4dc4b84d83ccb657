package renorm

import (
	"testing"

	"boardhub/internal/db"
	"boardhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
	return gdb
}

func TestColumn_RewritesToLadderPreservingOrder(t *testing.T) {
	gdb := testDB(t)
	creator := uuid.New()

	// Eroded positions from repeated midpoint drops.
	seeds := []models.Task{
		{ProjectID: 1, Title: "a", StatusCode: 1, Position: 62.5, Priority: 1, CreatedByID: creator},
		{ProjectID: 1, Title: "b", StatusCode: 1, Position: 125, Priority: 1, CreatedByID: creator},
		{ProjectID: 1, Title: "c", StatusCode: 1, Position: 1000, Priority: 1, CreatedByID: creator},
		{ProjectID: 1, Title: "other column", StatusCode: 2, Position: 3.14, Priority: 1, CreatedByID: creator},
	}
	if err := gdb.Create(&seeds).Error; err != nil {
		t.Fatal(err)
	}

	changed, err := Column(gdb, 1, 1)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if changed != 3 {
		t.Errorf("changed = %d, want 3", changed)
	}

	var tasks []models.Task
	if err := gdb.Where("project_id = ? AND status_code = ?", 1, 1).
		Order("position ASC").Find(&tasks).Error; err != nil {
		t.Fatal(err)
	}
	wantTitles := []string{"a", "b", "c"}
	wantPositions := []float64{1000, 2000, 3000}
	for i := range tasks {
		if tasks[i].Title != wantTitles[i] || tasks[i].Position != wantPositions[i] {
			t.Errorf("tasks[%d] = %q at %v, want %q at %v",
				i, tasks[i].Title, tasks[i].Position, wantTitles[i], wantPositions[i])
		}
	}

	// The other column is untouched.
	var other models.Task
	gdb.First(&other, seeds[3].ID)
	if other.Position != 3.14 {
		t.Errorf("other column position = %v, want untouched 3.14", other.Position)
	}
}

func TestColumn_NoChangesWhenAlreadyNormalized(t *testing.T) {
	gdb := testDB(t)
	creator := uuid.New()

	seeds := []models.Task{
		{ProjectID: 1, Title: "a", StatusCode: 1, Position: 1000, Priority: 1, CreatedByID: creator},
		{ProjectID: 1, Title: "b", StatusCode: 1, Position: 2000, Priority: 1, CreatedByID: creator},
	}
	if err := gdb.Create(&seeds).Error; err != nil {
		t.Fatal(err)
	}

	changed, err := Column(gdb, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 0 {
		t.Errorf("changed = %d, want 0", changed)
	}
}

func TestAll_CoversEveryProjectAndColumn(t *testing.T) {
	gdb := testDB(t)
	creator := uuid.New()

	seeds := []models.Task{
		{ProjectID: 1, Title: "p1c1", StatusCode: 1, Position: 7, Priority: 1, CreatedByID: creator},
		{ProjectID: 1, Title: "p1c2", StatusCode: 2, Position: 9, Priority: 1, CreatedByID: creator},
		{ProjectID: 2, Title: "p2c1", StatusCode: 1, Position: 11, Priority: 1, CreatedByID: creator},
	}
	if err := gdb.Create(&seeds).Error; err != nil {
		t.Fatal(err)
	}

	changed, err := All(gdb)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if changed != 3 {
		t.Errorf("changed = %d, want 3", changed)
	}

	var tasks []models.Task
	gdb.Find(&tasks)
	for _, task := range tasks {
		if task.Position != 1000 {
			t.Errorf("task %q position = %v, want 1000 (sole task in its column)", task.Title, task.Position)
		}
	}
}
