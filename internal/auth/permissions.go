// Package auth establishes actor identity at the transport boundary and
// answers per-action permission questions inside the services.
package auth

import "boardhub/internal/models"

// Permission checks are explicit per-action predicates keyed by role
// variant. Adding a role forces every predicate to take a position on it;
// there is no ordinal comparison to silently absorb new roles.

// CanView reports whether the role may read project data at all.
func CanView(role models.ParticipantRole) bool {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleEditor, models.RoleViewer:
		return true
	}
	return false
}

// CanCreateTask reports whether the role may create tasks.
func CanCreateTask(role models.ParticipantRole) bool {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleEditor:
		return true
	}
	return false
}

// CanEditTask reports whether the role may update or reorder tasks.
func CanEditTask(role models.ParticipantRole) bool {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleEditor:
		return true
	}
	return false
}

// CanDeleteTask reports whether the role may delete a task. Editors may
// only delete tasks they created.
func CanDeleteTask(role models.ParticipantRole, isCreator bool) bool {
	switch role {
	case models.RoleOwner, models.RoleAdmin:
		return true
	case models.RoleEditor, models.RoleViewer:
		return isCreator
	}
	return false
}

// CanManageStages reports whether the role may create, edit, reorder or
// delete workflow stages.
func CanManageStages(role models.ParticipantRole) bool {
	switch role {
	case models.RoleOwner, models.RoleAdmin:
		return true
	}
	return false
}

// CanComment reports whether the role may add comments.
func CanComment(role models.ParticipantRole) bool {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleEditor, models.RoleViewer:
		return true
	}
	return false
}
