package service

import (
	"testing"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/repository/memstore"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/matryer/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthFixture(t *testing.T) (*fixture, *AuthService, *utils.TokenManager) {
	f := newFixture(t)
	tokens := utils.NewTokenManager("test-secret", time.Hour, 2*time.Hour)
	auth := NewAuthService(f.store.Users(), f.store.Organizations(), f.store.Memberships(), tokens, memstore.Transactor{})
	auth.SetClock(func() time.Time { return f.now })
	return f, auth, tokens
}

func TestRegister(t *testing.T) {
	is := is.New(t)
	f, auth, tokens := newAuthFixture(t)

	pair, err := auth.Register(f.ctx, models.RegisterInput{
		Email:            "Ada@Example.com",
		Password:         "secret1",
		Name:             "Ada",
		OrganizationName: "Analytical Engines",
	})
	is.NoErr(err)
	is.Equal(pair.TokenType, "bearer")

	claims, err := tokens.ParseToken(pair.AccessToken, utils.TokenTypeAccess)
	is.NoErr(err)
	is.Equal(claims.Email, "ada@example.com")
	_, err = tokens.ParseToken(pair.RefreshToken, utils.TokenTypeRefresh)
	is.NoErr(err)

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	is.NoErr(err)
	orgs, err := NewOrganizationService(f.store.Organizations(), f.store.Memberships()).ListForUser(f.ctx, userID)
	is.NoErr(err)
	is.Equal(len(orgs), 1)
	is.Equal(orgs[0].Name, "Analytical Engines")
	is.Equal(orgs[0].Role, models.RoleOwner)

	t.Run("duplicate email ignores case", func(t *testing.T) {
		is := is.New(t)
		_, err := auth.Register(f.ctx, models.RegisterInput{
			Email: "ADA@example.com", Password: "secret2", Name: "Ada 2", OrganizationName: "Other",
		})
		is.Equal(kind(err), utils.KindValidation)
	})
	t.Run("blank organization", func(t *testing.T) {
		is := is.New(t)
		_, err := auth.Register(f.ctx, models.RegisterInput{
			Email: "bob@example.com", Password: "secret2", Name: "Bob", OrganizationName: " ",
		})
		is.Equal(kind(err), utils.KindValidation)
	})
}

func TestLogin(t *testing.T) {
	f, auth, _ := newAuthFixture(t)
	_, err := auth.Register(f.ctx, models.RegisterInput{
		Email: "ada@example.com", Password: "secret1", Name: "Ada", OrganizationName: "AE",
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		ok       bool
	}{
		{name: "valid", email: "ada@example.com", password: "secret1", ok: true},
		{name: "email case", email: " ADA@example.com", password: "secret1", ok: true},
		{name: "wrong password", email: "ada@example.com", password: "nope"},
		{name: "unknown user", email: "eve@example.com", password: "secret1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			pair, err := auth.Login(f.ctx, models.LoginInput{Email: tt.email, Password: tt.password})
			if tt.ok {
				is.NoErr(err)
				is.True(pair.AccessToken != "")
				return
			}
			apiErr, ok := err.(*utils.ApiError)
			is.True(ok)
			is.Equal(apiErr.StatusCode, 401)
			is.Equal(apiErr.Message, "Incorrect email or password")
		})
	}
}

func TestRefresh(t *testing.T) {
	is := is.New(t)
	f, auth, _ := newAuthFixture(t)
	pair, err := auth.Register(f.ctx, models.RegisterInput{
		Email: "ada@example.com", Password: "secret1", Name: "Ada", OrganizationName: "AE",
	})
	is.NoErr(err)

	next, err := auth.Refresh(f.ctx, models.RefreshInput{RefreshToken: pair.RefreshToken})
	is.NoErr(err)
	is.True(next.AccessToken != "")

	// access 令牌不能用于刷新
	_, err = auth.Refresh(f.ctx, models.RefreshInput{RefreshToken: pair.AccessToken})
	_, isAPI := err.(*utils.ApiError)
	is.True(isAPI)

	_, err = auth.Refresh(f.ctx, models.RefreshInput{RefreshToken: "garbage"})
	_, isAPI = err.(*utils.ApiError)
	is.True(isAPI)
}
