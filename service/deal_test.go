package service

import (
	"testing"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/matryer/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateDealDefaults(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	c := f.contact(f.member, "Jane Buyer")

	d, err := f.deals.Create(f.ctx, f.member, models.DealInput{Title: "  Big deal ", ContactID: c.ID, Amount: money("1000")})
	is.NoErr(err)
	is.Equal(d.Title, "Big deal")
	is.Equal(d.Status, models.DealStatusNew)
	is.Equal(d.Stage, models.DealStageQualification)
	is.Equal(d.Currency, "USD")
	is.Equal(d.OwnerID, f.member.UserID)
	is.Equal(d.ContactName, "Jane Buyer")
	is.Equal(d.OwnerName, "Max Member")
	is.Equal(d.CreatedAt, f.now)

	acts := f.activitiesOf(d.ID)
	is.Equal(len(acts), 1)
	is.Equal(acts[0].Type, models.ActivitySystem)
	is.Equal(acts[0].Payload["message"], "Deal created")
	is.Equal(*acts[0].AuthorID, f.member.UserID)
}

func TestCreateDealRejects(t *testing.T) {
	f := newFixture(t)
	own := f.contact(f.owner, "Mine")
	otherOrg := f.newOrg("Other")
	outsider := f.join(otherOrg, "Olga Outsider", models.RoleOwner)
	foreign := f.contact(outsider, "Theirs")

	tests := []struct {
		name string
		in   models.DealInput
		want utils.ErrorKind
	}{
		{"contact in another organization", models.DealInput{Title: "x", ContactID: foreign.ID}, utils.KindValidation},
		{"missing contact", models.DealInput{Title: "x", ContactID: primitive.NewObjectID()}, utils.KindValidation},
		{"blank title", models.DealInput{Title: "  ", ContactID: own.ID}, utils.KindValidation},
		{"negative amount", models.DealInput{Title: "x", ContactID: own.ID, Amount: money("-1")}, utils.KindValidation},
		{"won without amount", models.DealInput{Title: "x", ContactID: own.ID, Status: models.DealStatusWon}, utils.KindInvalidState},
		{"won with zero amount", models.DealInput{Title: "x", ContactID: own.ID, Status: models.DealStatusWon, Amount: money("0")}, utils.KindInvalidState},
		{"unknown stage", models.DealInput{Title: "x", ContactID: own.ID, Stage: "won"}, utils.KindValidation},
		{"unknown status", models.DealInput{Title: "x", ContactID: own.ID, Status: "pending"}, utils.KindValidation},
		{"bad currency", models.DealInput{Title: "x", ContactID: own.ID, Currency: "EURO"}, utils.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			_, err := f.deals.Create(f.ctx, f.owner, tt.in)
			is.Equal(kind(err), tt.want)
		})
	}
}

func TestUpdateDealAuthorization(t *testing.T) {
	f := newFixture(t)
	d := f.deal(f.member, models.DealInput{Title: "mine"})

	t.Run("other member is denied", func(t *testing.T) {
		is := is.New(t)
		_, err := f.deals.Update(f.ctx, f.member2, d.ID, models.DealChanges{Title: str("stolen")})
		is.Equal(kind(err), utils.KindPermissionDenied)
	})
	t.Run("owner of the record may update", func(t *testing.T) {
		is := is.New(t)
		got, err := f.deals.Update(f.ctx, f.member, d.ID, models.DealChanges{Title: str("renamed")})
		is.NoErr(err)
		is.Equal(got.Title, "renamed")
	})
	t.Run("manager may update any deal", func(t *testing.T) {
		is := is.New(t)
		_, err := f.deals.Update(f.ctx, f.manager, d.ID, models.DealChanges{Description: str("note")})
		is.NoErr(err)
	})
	t.Run("other tenant gets not found", func(t *testing.T) {
		is := is.New(t)
		outsider := f.join(f.newOrg("Other"), "Olga", models.RoleOwner)
		_, err := f.deals.Update(f.ctx, outsider, d.ID, models.DealChanges{Title: str("x")})
		is.Equal(kind(err), utils.KindNotFound)
		_, err = f.deals.Get(f.ctx, outsider, d.ID)
		is.Equal(kind(err), utils.KindNotFound)
	})
}

func TestUpdateDealWonRequiresAmount(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	d := f.deal(f.owner, models.DealInput{Title: "zero"})

	_, err := f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Status: status(models.DealStatusWon)})
	is.Equal(kind(err), utils.KindInvalidState)
	is.Equal(len(f.activitiesOf(d.ID)), 1) // 失败时不追加活动

	got, err := f.deals.Get(f.ctx, f.owner, d.ID)
	is.NoErr(err)
	is.Equal(got.Status, models.DealStatusNew)

	// 同一次更新中给出的金额不算数
	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Status: status(models.DealStatusWon), Amount: money("1000")})
	is.Equal(kind(err), utils.KindInvalidState)
	got, err = f.deals.Get(f.ctx, f.owner, d.ID)
	is.NoErr(err)
	is.Equal(got.Amount, nil) // 被拒绝的更新不写入金额

	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Amount: money("500")})
	is.NoErr(err)
	won, err := f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Status: status(models.DealStatusWon)})
	is.NoErr(err)
	is.Equal(won.Status, models.DealStatusWon)
	is.Equal(won.Amount.String(), "500.00")

	// 状态未变化时不再校验金额
	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Status: status(models.DealStatusWon), Amount: money("0")})
	is.NoErr(err)
}

func TestUpdateDealStageBackward(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		actor func() Actor
		ok    bool
	}{
		{"owner", func() Actor { return f.owner }, true},
		{"admin", func() Actor { return f.admin }, true},
		{"manager", func() Actor { return f.manager }, false},
		{"member", func() Actor { return f.member }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			actor := tt.actor()
			d := f.deal(actor, models.DealInput{Title: "deal", Stage: models.DealStageNegotiation})

			_, err := f.deals.Update(f.ctx, actor, d.ID, models.DealChanges{Stage: stage(models.DealStageProposal)})
			if tt.ok {
				is.NoErr(err)
				return
			}
			is.Equal(kind(err), utils.KindInvalidState)

			// 前进总是允许
			_, err = f.deals.Update(f.ctx, actor, d.ID, models.DealChanges{Stage: stage(models.DealStageClosed)})
			is.NoErr(err)
		})
	}
}

func TestUpdateDealActivities(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	d := f.deal(f.owner, models.DealInput{Title: "deal", Amount: money("10")})

	_, err := f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{
		Status: status(models.DealStatusInProgress),
		Stage:  stage(models.DealStageProposal),
	})
	is.NoErr(err)

	acts := f.activitiesOf(d.ID)
	is.Equal(len(acts), 3)
	byType := map[models.ActivityType]models.Activity{}
	for _, a := range acts {
		byType[a.Type] = a
	}
	is.Equal(byType[models.ActivityStatusChanged].Payload["old_status"], "new")
	is.Equal(byType[models.ActivityStatusChanged].Payload["new_status"], "in_progress")
	is.Equal(byType[models.ActivityStageChanged].Payload["old_stage"], "qualification")
	is.Equal(byType[models.ActivityStageChanged].Payload["new_stage"], "proposal")

	// 值未变化不产生活动
	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{
		Status: status(models.DealStatusInProgress),
		Stage:  stage(models.DealStageProposal),
		Title:  str("renamed"),
	})
	is.NoErr(err)
	is.Equal(len(f.activitiesOf(d.ID)), 3)
}

func TestUpdateDealRejectsUnknownStage(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	d := f.deal(f.owner, models.DealInput{Title: "deal"})

	_, err := f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Stage: stage("lost")})
	is.Equal(kind(err), utils.KindValidation)
	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Amount: money("-5")})
	is.Equal(kind(err), utils.KindValidation)
}

func TestListDealsScoping(t *testing.T) {
	f := newFixture(t)
	f.deal(f.member, models.DealInput{Title: "m1", Amount: money("100")})
	f.deal(f.member, models.DealInput{Title: "m2", Amount: money("300"), Status: models.DealStatusWon})
	f.deal(f.member2, models.DealInput{Title: "n1", Amount: money("200")})
	f.deal(f.join(f.newOrg("Other"), "Olga", models.RoleOwner), models.DealInput{Title: "foreign"})

	t.Run("member sees own deals", func(t *testing.T) {
		is := is.New(t)
		page, err := f.deals.List(f.ctx, f.member, DealQuery{})
		is.NoErr(err)
		is.Equal(page.Total, int64(2))
		for _, d := range page.Items {
			is.Equal(d.OwnerID, f.member.UserID)
		}
	})
	t.Run("member cannot filter by other owner", func(t *testing.T) {
		is := is.New(t)
		_, err := f.deals.List(f.ctx, f.member, DealQuery{OwnerID: &f.member2.UserID})
		is.Equal(kind(err), utils.KindPermissionDenied)
	})
	t.Run("manager sees the organization", func(t *testing.T) {
		is := is.New(t)
		page, err := f.deals.List(f.ctx, f.manager, DealQuery{OrderBy: "amount", Order: "asc"})
		is.NoErr(err)
		is.Equal(page.Total, int64(3))
		is.Equal(page.Items[0].Title, "m1")
		is.Equal(page.Items[2].Title, "m2")
	})
	t.Run("filters", func(t *testing.T) {
		is := is.New(t)
		page, err := f.deals.List(f.ctx, f.manager, DealQuery{
			Statuses:  []models.DealStatus{models.DealStatusNew},
			MinAmount: money("150"),
		})
		is.NoErr(err)
		is.Equal(page.Total, int64(1))
		is.Equal(page.Items[0].Title, "n1")
	})
	t.Run("paging", func(t *testing.T) {
		is := is.New(t)
		page, err := f.deals.List(f.ctx, f.owner, DealQuery{PageRequest: models.PageRequest{Page: 2, PageSize: 2}})
		is.NoErr(err)
		is.Equal(page.Total, int64(3))
		is.Equal(len(page.Items), 1)
		is.Equal(page.TotalPages, int64(2))
	})
	t.Run("invalid order", func(t *testing.T) {
		is := is.New(t)
		_, err := f.deals.List(f.ctx, f.owner, DealQuery{OrderBy: "title"})
		is.Equal(kind(err), utils.KindValidation)
	})
}

func TestDeleteDeal(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	d := f.deal(f.member, models.DealInput{Title: "deal"})

	err := f.deals.Delete(f.ctx, f.member2, d.ID)
	is.Equal(kind(err), utils.KindPermissionDenied)

	is.NoErr(f.deals.Delete(f.ctx, f.member, d.ID))
	_, err = f.deals.Get(f.ctx, f.member, d.ID)
	is.Equal(kind(err), utils.KindNotFound)
	is.Equal(kind(f.deals.Delete(f.ctx, f.member, d.ID)), utils.KindNotFound)
}
