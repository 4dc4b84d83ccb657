package auth

import (
	"errors"
	"fmt"

	"boardhub/internal/apperr"
	"boardhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleOf resolves the actor's role in a project. A user with no participant
// row gets an authorization error, not a role.
func RoleOf(db *gorm.DB, projectID uint, userID uuid.UUID) (models.ParticipantRole, error) {
	var p models.ProjectParticipant
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Authorization("user is not a participant in this project")
	}
	if err != nil {
		return "", fmt.Errorf("auth: resolve role in project %d: %w", projectID, err)
	}
	return p.Role, nil
}

// IsParticipant reports whether the user holds any role in the project.
func IsParticipant(db *gorm.DB, projectID uint, userID uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(&models.ProjectParticipant{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("auth: check participancy in project %d: %w", projectID, err)
	}
	return count > 0, nil
}
