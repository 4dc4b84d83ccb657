// Package renorm rewrites eroded position values back onto the coarse
// 1000-step ladder. Midpoint insertion halves the gap between neighbors on
// every drop, so long-lived columns drift toward float precision limits;
// this job resets them without changing task order.
package renorm

import (
	"fmt"

	"boardhub/internal/models"
	"boardhub/internal/position"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Column rewrites one status group's positions to 1000, 2000, ... preserving
// the current order (position, then id). Returns how many rows changed.
func Column(db *gorm.DB, projectID uint, statusCode int) (int, error) {
	changed := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var tasks []models.Task
		if err := tx.Where("project_id = ? AND status_code = ?", projectID, statusCode).
			Order("position ASC, id ASC").
			Find(&tasks).Error; err != nil {
			return fmt.Errorf("renorm: load column %d/%d: %w", projectID, statusCode, err)
		}
		for i := range tasks {
			want := position.Ladder(i)
			if tasks[i].Position == want {
				continue
			}
			if err := tx.Model(&models.Task{}).
				Where("id = ?", tasks[i].ID).
				UpdateColumn("position", want).Error; err != nil {
				return fmt.Errorf("renorm: rewrite task %d: %w", tasks[i].ID, err)
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Project renormalizes every status group of one project.
func Project(db *gorm.DB, projectID uint) (int, error) {
	var codes []int
	if err := db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Distinct("status_code").
		Pluck("status_code", &codes).Error; err != nil {
		return 0, fmt.Errorf("renorm: list status groups for project %d: %w", projectID, err)
	}
	total := 0
	for _, code := range codes {
		n, err := Column(db, projectID, code)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// All renormalizes every project that has tasks.
func All(db *gorm.DB) (int, error) {
	var projectIDs []uint
	if err := db.Model(&models.Task{}).
		Distinct("project_id").
		Pluck("project_id", &projectIDs).Error; err != nil {
		return 0, fmt.Errorf("renorm: list projects: %w", err)
	}
	total := 0
	for _, id := range projectIDs {
		n, err := Project(db, id)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Job schedules All on a cron expression. The returned cron is already
// started; callers stop it on shutdown.
func Job(db *gorm.DB, schedule string, log *logrus.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := All(db)
		if err != nil {
			log.WithError(err).Error("position renormalization failed")
			return
		}
		log.WithField("rewritten", n).Info("position renormalization complete")
	})
	if err != nil {
		return nil, fmt.Errorf("renorm: schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
