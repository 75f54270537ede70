package service

import (
	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action 需要按角色判定的操作
type Action string

const (
	ActionUpdateDeal        Action = "deal.update"
	ActionDeleteDeal        Action = "deal.delete"
	ActionMoveStageBackward Action = "deal.stage_backward"
	ActionCreateTask        Action = "task.create"
	ActionUpdateTask        Action = "task.update"
	ActionDeleteTask        Action = "task.delete"
	ActionUpdateContact     Action = "contact.update"
	ActionViewOthersRecords Action = "records.view_others"
)

// Rule 判定结果
type Rule int

const (
	Deny Rule = iota
	Allow
	// OwnerOnly 仅当操作者是记录负责人时允许
	OwnerOnly
)

func rules(owner, admin, manager, member Rule) map[models.Role]Rule {
	return map[models.Role]Rule{
		models.RoleOwner:   owner,
		models.RoleAdmin:   admin,
		models.RoleManager: manager,
		models.RoleMember:  member,
	}
}

// policy 角色 × 操作 决策表，未列出的组合一律拒绝
var policy = map[Action]map[models.Role]Rule{
	ActionUpdateDeal:        rules(Allow, Allow, Allow, OwnerOnly),
	ActionDeleteDeal:        rules(Allow, Allow, Allow, OwnerOnly),
	ActionMoveStageBackward: rules(Allow, Allow, Deny, Deny),
	ActionCreateTask:        rules(Allow, Allow, Allow, OwnerOnly),
	ActionUpdateTask:        rules(Allow, Allow, Allow, OwnerOnly),
	ActionDeleteTask:        rules(Allow, Allow, Allow, OwnerOnly),
	ActionUpdateContact:     rules(Allow, Allow, Allow, OwnerOnly),
	ActionViewOthersRecords: rules(Allow, Allow, Allow, Deny),
}

var denyMessages = map[Action]string{
	ActionUpdateDeal:        "Cannot update other users' deals",
	ActionDeleteDeal:        "Cannot delete other users' deals",
	ActionCreateTask:        "Cannot create tasks for other users' deals",
	ActionUpdateTask:        "Cannot update tasks of other users' deals",
	ActionDeleteTask:        "Cannot delete tasks of other users' deals",
	ActionUpdateContact:     "Cannot update other users' contacts",
	ActionViewOthersRecords: "Cannot filter by other users' records",
}

// Decide 查询决策表
func Decide(action Action, role models.Role) Rule {
	return policy[action][role]
}

// Permits 判定操作者能否对某负责人的记录执行操作
func Permits(action Action, role models.Role, actorID, ownerID primitive.ObjectID) bool {
	switch Decide(action, role) {
	case Allow:
		return true
	case OwnerOnly:
		return actorID == ownerID
	}
	return false
}

// Authorize 不允许时返回 PermissionDenied
func Authorize(action Action, role models.Role, actorID, ownerID primitive.ObjectID) error {
	if Permits(action, role, actorID, ownerID) {
		return nil
	}
	msg, ok := denyMessages[action]
	if !ok {
		msg = "Permission denied"
	}
	return utils.NewPermissionDeniedError(msg)
}

// Actor 当前操作者及其所在组织
type Actor struct {
	OrganizationID primitive.ObjectID
	UserID         primitive.ObjectID
	Role           models.Role
}

// scopeOwner 列表查询的负责人过滤：member 只能看自己的记录
func scopeOwner(actor Actor, requested *primitive.ObjectID) (*primitive.ObjectID, error) {
	if requested != nil && *requested != actor.UserID {
		if err := Authorize(ActionViewOthersRecords, actor.Role, actor.UserID, *requested); err != nil {
			return nil, err
		}
	}
	if requested == nil && Decide(ActionViewOthersRecords, actor.Role) == Deny {
		own := actor.UserID
		return &own, nil
	}
	return requested, nil
}
