// Package policy is the single place role checks live. Each predicate is an
// exact membership test against the allowed-role set for that action; there
// is no privilege hierarchy computation.
//
// Canonical table (mirrors the backend's enforcement, which wins over any
// screen-level gate):
//
//	create/edit/delete challenge  ADMIN, STAFF
//	manage users / change roles   ADMIN
//	view user list                ADMIN
package policy

import "code_judge_cli/internal/domain/model"

var (
	challengeAuthors = roleSet(model.RoleAdmin, model.RoleStaff)
	userManagers     = roleSet(model.RoleAdmin)
)

func roleSet(roles ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func CanCreateChallenge(role string) bool {
	_, ok := challengeAuthors[role]
	return ok
}

func CanEditChallenge(role string) bool {
	_, ok := challengeAuthors[role]
	return ok
}

func CanDeleteChallenge(role string) bool {
	_, ok := challengeAuthors[role]
	return ok
}

func CanManageUsers(role string) bool {
	_, ok := userManagers[role]
	return ok
}

func CanViewUserList(role string) bool {
	_, ok := userManagers[role]
	return ok
}
