package service

import (
	"testing"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/matryer/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		action Action
		role   models.Role
		want   Rule
	}{
		{ActionUpdateDeal, models.RoleOwner, Allow},
		{ActionUpdateDeal, models.RoleManager, Allow},
		{ActionUpdateDeal, models.RoleMember, OwnerOnly},
		{ActionMoveStageBackward, models.RoleAdmin, Allow},
		{ActionMoveStageBackward, models.RoleManager, Deny},
		{ActionMoveStageBackward, models.RoleMember, Deny},
		{ActionCreateTask, models.RoleMember, OwnerOnly},
		{ActionUpdateContact, models.RoleMember, OwnerOnly},
		{ActionViewOthersRecords, models.RoleManager, Allow},
		{ActionViewOthersRecords, models.RoleMember, Deny},
		{ActionUpdateDeal, models.Role("guest"), Deny},
	}
	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.role), func(t *testing.T) {
			is := is.New(t)
			is.Equal(Decide(tt.action, tt.role), tt.want)
		})
	}
}

func TestAuthorizeOwnerOnly(t *testing.T) {
	is := is.New(t)
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()

	is.NoErr(Authorize(ActionUpdateDeal, models.RoleMember, me, me))
	err := Authorize(ActionUpdateDeal, models.RoleMember, me, other)
	is.True(utils.IsKind(err, utils.KindPermissionDenied))
	is.NoErr(Authorize(ActionUpdateDeal, models.RoleAdmin, me, other))
}

func TestScopeOwner(t *testing.T) {
	org := primitive.NewObjectID()
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()

	t.Run("member defaults to self", func(t *testing.T) {
		is := is.New(t)
		got, err := scopeOwner(Actor{OrganizationID: org, UserID: me, Role: models.RoleMember}, nil)
		is.NoErr(err)
		is.Equal(*got, me)
	})
	t.Run("member may pass own id", func(t *testing.T) {
		is := is.New(t)
		got, err := scopeOwner(Actor{OrganizationID: org, UserID: me, Role: models.RoleMember}, &me)
		is.NoErr(err)
		is.Equal(*got, me)
	})
	t.Run("member cannot filter others", func(t *testing.T) {
		is := is.New(t)
		_, err := scopeOwner(Actor{OrganizationID: org, UserID: me, Role: models.RoleMember}, &other)
		is.True(utils.IsKind(err, utils.KindPermissionDenied))
	})
	t.Run("manager sees everything", func(t *testing.T) {
		is := is.New(t)
		got, err := scopeOwner(Actor{OrganizationID: org, UserID: me, Role: models.RoleManager}, nil)
		is.NoErr(err)
		is.True(got == nil)
	})
}
