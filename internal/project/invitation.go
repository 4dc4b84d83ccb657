package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"boardhub/internal/apperr"
	"boardhub/internal/auth"
	"boardhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationTTL is how long an invitation token stays usable.
const InvitationTTL = 7 * 24 * time.Hour

// Invitations lists a project's invitations newest-first.
func Invitations(db *gorm.DB, projectID uint, actorID uuid.UUID) ([]models.ProjectInvitation, error) {
	role, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageStages(role) {
		return nil, apperr.Authorization("role %s cannot view invitations", role)
	}
	var invitations []models.ProjectInvitation
	if err := db.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("project: list invitations for %d: %w", projectID, err)
	}
	return invitations, nil
}

// Invite creates a pending invitation for an email address. Delivery of the
// token is left to an external notifier.
func Invite(db *gorm.DB, projectID uint, email string, role models.ParticipantRole, actorID uuid.UUID) (*models.ProjectInvitation, error) {
	actorRole, err := auth.RoleOf(db, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageStages(actorRole) {
		return nil, apperr.Authorization("role %s cannot invite participants", actorRole)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid invitee email is required")
	}
	switch role {
	case models.RoleAdmin, models.RoleEditor, models.RoleViewer:
	case models.RoleOwner:
		return nil, apperr.Validation("ownership cannot be granted by invitation")
	default:
		return nil, apperr.Validation("unknown role %q", role)
	}

	var pending int64
	if err := db.Model(&models.ProjectInvitation{}).
		Where("project_id = ? AND invitee_email = ? AND status = ?", projectID, email, "pending").
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("project: check pending invitations: %w", err)
	}
	if pending > 0 {
		return nil, apperr.InvalidOperation("an invitation for %s is already pending", email)
	}

	invitation := models.ProjectInvitation{
		ProjectID:    projectID,
		InviteeEmail: email,
		Role:         role,
		Status:       "pending",
		Token:        uuid.New(),
		InvitedBy:    actorID,
	}
	if err := db.Create(&invitation).Error; err != nil {
		return nil, fmt.Errorf("project: create invitation for %s: %w", email, err)
	}
	return &invitation, nil
}

// Accept redeems an invitation token for the calling user, adding them as a
// participant with the invited role.
func Accept(db *gorm.DB, token uuid.UUID, userID uuid.UUID, userEmail string) (*models.ProjectParticipant, error) {
	var participant models.ProjectParticipant
	err := db.Transaction(func(tx *gorm.DB) error {
		var invitation models.ProjectInvitation
		err := tx.Where("token = ?", token).First(&invitation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("invitation not found")
		}
		if err != nil {
			return fmt.Errorf("project: get invitation: %w", err)
		}

		if invitation.Status != "pending" {
			return apperr.InvalidOperation("invitation is %s", invitation.Status)
		}
		if time.Since(invitation.CreatedAt) > InvitationTTL {
			now := time.Now().UTC()
			invitation.Status = "expired"
			invitation.RespondedAt = &now
			if err := tx.Save(&invitation).Error; err != nil {
				return fmt.Errorf("project: expire invitation %d: %w", invitation.ID, err)
			}
			return apperr.InvalidOperation("invitation has expired")
		}
		if !strings.EqualFold(invitation.InviteeEmail, userEmail) {
			return apperr.Authorization("invitation was issued to a different email")
		}

		exists, err := auth.IsParticipant(tx, invitation.ProjectID, userID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.InvalidOperation("already a participant in this project")
		}

		participant = models.ProjectParticipant{
			ProjectID: invitation.ProjectID,
			UserID:    userID,
			Role:      invitation.Role,
			JoinedAt:  time.Now().UTC(),
		}
		if err := tx.Create(&participant).Error; err != nil {
			return fmt.Errorf("project: add participant: %w", err)
		}

		now := time.Now().UTC()
		invitation.Status = "accepted"
		invitation.RespondedAt = &now
		if err := tx.Save(&invitation).Error; err != nil {
			return fmt.Errorf("project: mark invitation accepted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}
