package auth

import (
	"sort"

	"github.com/ctlabs/taskrouter/internal/domain"
)

// Action names a protected operation. Handlers pass their own action to the
// gate at the call site.
type Action string

// Protected actions.
const (
	ActionSubmitTask  Action = "submit_task"
	ActionTaskInfo    Action = "task_info"
	ActionCalcHash    Action = "calc_hash"
	ActionResizeImage Action = "resize_image"
	ActionWaterMarks  Action = "water_marks"
)

// Actions returns every known action in declaration order.
func Actions() []Action {
	return []Action{ActionSubmitTask, ActionTaskInfo, ActionCalcHash, ActionResizeImage, ActionWaterMarks}
}

// SubmitAction returns the action guarding the typed submit endpoint for t.
func SubmitAction(t domain.TaskType) Action {
	return Action(t)
}

type permissions struct {
	all     bool
	actions map[Action]struct{}
}

func allow(actions ...Action) permissions {
	p := permissions{actions: make(map[Action]struct{}, len(actions))}
	for _, a := range actions {
		p.actions[a] = struct{}{}
	}
	return p
}

// policy is the role to action matrix. Roles not listed are denied everything.
var policy = map[domain.Role]permissions{
	domain.RoleAdmin:         {all: true},
	domain.RoleService:       allow(ActionCalcHash, ActionWaterMarks),
	domain.RoleCopytrustSite: allow(ActionCalcHash),
}

// Authorize reports whether role may perform action.
func Authorize(role domain.Role, action Action) bool {
	p, ok := policy[role]
	if !ok {
		return false
	}
	if p.all {
		return true
	}
	_, ok = p.actions[action]
	return ok
}

// PermittedActions lists the known actions role may perform, sorted by name.
func PermittedActions(role domain.Role) []Action {
	var out []Action
	for _, a := range Actions() {
		if Authorize(role, a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Roles returns the roles that appear in the matrix, sorted by name.
func Roles() []domain.Role {
	roles := make([]domain.Role, 0, len(policy))
	for r := range policy {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
