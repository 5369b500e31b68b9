package domain

// RoleHierarchy is an ordered sequence of role names from least to most
// privileged. A role at level L grants access to content requiring any
// role at level <= L. The ordering is configuration, not a stored entity.
type RoleHierarchy []string

// DefaultRoleHierarchy returns the standard ordering
func DefaultRoleHierarchy() RoleHierarchy {
	return RoleHierarchy{"viewer", "employee", "admin"}
}

// Level returns the privilege level of a role, or -1 if the role is not
// part of the hierarchy
func (h RoleHierarchy) Level(role string) int {
	for i, r := range h {
		if r == role {
			return i
		}
	}
	return -1
}

// Expand returns the set of roles whose content the given roles may
// access: for each held role, every role at or below it in the hierarchy.
// Roles absent from the hierarchy contribute nothing. The result contains
// no duplicates and preserves hierarchy order.
func (h RoleHierarchy) Expand(roles []string) []string {
	maxLevel := -1
	for _, role := range roles {
		if level := h.Level(role); level > maxLevel {
			maxLevel = level
		}
	}
	if maxLevel < 0 {
		return nil
	}

	expanded := make([]string, maxLevel+1)
	copy(expanded, h[:maxLevel+1])
	return expanded
}

// Implies reports whether holding role a grants access to content
// requiring role b
func (h RoleHierarchy) Implies(a, b string) bool {
	la, lb := h.Level(a), h.Level(b)
	return la >= 0 && lb >= 0 && la >= lb
}
