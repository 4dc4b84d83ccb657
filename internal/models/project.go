package models

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantRole is the role a user holds within a single project.
type ParticipantRole string

const (
	RoleOwner  ParticipantRole = "owner"
	RoleAdmin  ParticipantRole = "admin"
	RoleEditor ParticipantRole = "editor"
	RoleViewer ParticipantRole = "viewer"
)

// Project is the container for tasks, stages, labels and milestones.
type Project struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	PublicID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name      string    `gorm:"size:200;not null"`
	Slug      string    `gorm:"size:200;index"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null"`
	Status    int       `gorm:"default:1"` // 1=active, 2=on hold, 3=completed
	Priority  int       `gorm:"default:2"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Participants []ProjectParticipant `gorm:"foreignKey:ProjectID"`
	Stages       []WorkflowStage      `gorm:"foreignKey:ProjectID"`
}

// ProjectParticipant links a user to a project with a role.
type ProjectParticipant struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	ProjectID uint            `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_project_user"`
	Role      ParticipantRole `gorm:"size:16;not null;default:editor"`
	JoinedAt  time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID"`
}

// ProjectInvitation is a pending invite to join a project.
type ProjectInvitation struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	ProjectID    uint            `gorm:"not null;index"`
	InviteeEmail string          `gorm:"size:256;not null;index"`
	Role         ParticipantRole `gorm:"size:16;not null;default:editor"`
	Status       string          `gorm:"size:16;not null;default:pending"` // pending, accepted, declined, expired
	Token        uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	InvitedBy    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
	RespondedAt  *time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
