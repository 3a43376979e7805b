package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/internal/testkit"
	"github.com/anonto42/recipehub/backend/pkg/logger"
)

type stubTokens struct{}

func (stubTokens) Generate(user *models.User) (string, time.Time, error) {
	return "token-" + user.ID.Hex(), time.Now().Add(time.Hour), nil
}

type stubVerifier map[string]*auth.Token

func (v stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := v[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("invalid token")
}

func newAccounts(store *testkit.Store, verifier TokenVerifier) *AccountService {
	return NewAccountService(store, stubTokens{}, verifier, logger.Discard())
}

func TestRegisterAndLogin(t *testing.T) {
	store := testkit.NewStore()
	accounts := newAccounts(store, nil)
	ctx := context.Background()

	res, err := accounts.Register(ctx, models.RegisterRequest{
		Username: "chef", Email: "Chef@Example.com", Password: "secret1", Name: " Chef ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Token == "" || res.User.Email != "chef@example.com" || res.User.Name != "Chef" || res.User.Role != models.RoleUser {
		t.Fatalf("unexpected registration %+v", res.User)
	}
	stored := testkit.MustReload(t, store, res.User.ID)
	if stored.Password == "secret1" || stored.Password == "" {
		t.Fatal("password must be hashed")
	}

	_, err = accounts.Register(ctx, models.RegisterRequest{Username: "other", Email: "chef@example.com", Password: "secret1", Name: "x"})
	assertKind(t, err, KindConflict)
	_, err = accounts.Register(ctx, models.RegisterRequest{Username: "chef", Email: "new@example.com", Password: "secret1", Name: "x"})
	assertKind(t, err, KindConflict)

	if _, err := accounts.Login(ctx, models.LoginRequest{Email: "CHEF@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err = accounts.Login(ctx, models.LoginRequest{Email: "chef@example.com", Password: "wrong"})
	assertKind(t, err, KindUnauthorized)
	_, err = accounts.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assertKind(t, err, KindUnauthorized)
}

func TestChangePasswordAndProfile(t *testing.T) {
	store := testkit.NewStore()
	accounts := newAccounts(store, nil)
	ctx := context.Background()
	res, err := accounts.Register(ctx, models.RegisterRequest{Username: "chef", Email: "chef@example.com", Password: "secret1", Name: "Chef"})
	if err != nil {
		t.Fatal(err)
	}
	actor := testkit.MustReload(t, store, res.User.ID)

	err = accounts.ChangePassword(ctx, actor, models.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	assertKind(t, err, KindValidation)
	if err := accounts.ChangePassword(ctx, actor, models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}); err != nil {
		t.Fatal(err)
	}
	if _, err := accounts.Login(ctx, models.LoginRequest{Email: "chef@example.com", Password: "secret2"}); err != nil {
		t.Fatal("new password should work")
	}

	blank := "  "
	_, err = accounts.UpdateProfile(ctx, actor, models.ProfileUpdate{Name: &blank})
	assertKind(t, err, KindValidation)

	bio := "I cook"
	updated, err := accounts.UpdateProfile(ctx, actor, models.ProfileUpdate{Bio: &bio})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Bio != bio || updated.Name != "Chef" {
		t.Fatal("only bio should change")
	}

	profile, err := accounts.Profile(ctx, actor)
	if err != nil {
		t.Fatal(err)
	}
	if profile.FollowerCount != 0 || profile.Bio != bio {
		t.Fatalf("profile %+v", profile)
	}
}

func TestFirebaseLogin(t *testing.T) {
	store := testkit.NewStore()
	ctx := context.Background()
	existing := testkit.MustUser(t, store, "linked")
	verifier := stubVerifier{
		"link":  {UID: "uid-link", Claims: map[string]interface{}{"email": "LINKED@example.com", "email_verified": true}},
		"fresh": {UID: "uid-fresh", Claims: map[string]interface{}{"email": "new.cook+1@example.com", "name": "New Cook"}},
	}
	accounts := newAccounts(store, verifier)

	res, err := accounts.FirebaseLogin(ctx, "link")
	if err != nil {
		t.Fatal(err)
	}
	if res.User.ID != existing.ID {
		t.Fatal("account with the same email should be linked")
	}
	if testkit.MustReload(t, store, existing.ID).FirebaseUID != "uid-link" {
		t.Fatal("firebase uid should be stored")
	}

	created, err := accounts.FirebaseLogin(ctx, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if created.User.Name != "New Cook" || !regexp.MustCompile(`^newcook1_[0-9a-f]{8}$`).MatchString(created.User.Username) {
		t.Fatalf("unexpected created user %q %q", created.User.Username, created.User.Name)
	}
	again, err := accounts.FirebaseLogin(ctx, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if again.User.ID != created.User.ID {
		t.Fatal("second login should find the account by uid")
	}

	_, err = accounts.FirebaseLogin(ctx, "forged")
	assertKind(t, err, KindUnauthorized)

	_, err = newAccounts(store, nil).FirebaseLogin(ctx, "link")
	assertKind(t, err, KindUnauthorized)
}

func TestFirebaseLoginRefusesUnsafeLinks(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
		preUID string
	}{
		{name: "unverified email", claims: map[string]interface{}{"email": "owner@example.com", "email_verified": false}},
		{name: "missing verification claim", claims: map[string]interface{}{"email": "owner@example.com"}},
		{name: "verification claim not a bool", claims: map[string]interface{}{"email": "owner@example.com", "email_verified": "true"}},
		{name: "account already linked", claims: map[string]interface{}{"email": "owner@example.com", "email_verified": true}, preUID: "uid-owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testkit.NewStore()
			ctx := context.Background()
			owner := testkit.MustUser(t, store, "owner")
			if tt.preUID != "" {
				if err := store.LinkFirebaseUID(ctx, owner.ID, tt.preUID); err != nil {
					t.Fatal(err)
				}
			}
			accounts := newAccounts(store, stubVerifier{"intruder": {UID: "uid-intruder", Claims: tt.claims}})

			res, err := accounts.FirebaseLogin(ctx, "intruder")
			assertKind(t, err, KindConflict)
			if res != nil {
				t.Fatal("no session may be issued")
			}
			if got := testkit.MustReload(t, store, owner.ID).FirebaseUID; got != tt.preUID {
				t.Fatalf("firebase uid %q, want %q", got, tt.preUID)
			}
			if _, err := store.GetUserByFirebaseUID(ctx, "uid-intruder"); err == nil {
				t.Fatal("the intruding identity must not resolve to any account")
			}
		})
	}
}

func TestStoreLinkFirebaseUIDKeepsExistingLink(t *testing.T) {
	store := testkit.NewStore()
	ctx := context.Background()
	u := testkit.MustUser(t, store, "u")
	if err := store.LinkFirebaseUID(ctx, u.ID, "first"); err != nil {
		t.Fatal(err)
	}
	if err := store.LinkFirebaseUID(ctx, u.ID, "second"); !errors.Is(err, repositories.ErrDuplicate) {
		t.Fatalf("relink: %v", err)
	}
	if testkit.MustReload(t, store, u.ID).FirebaseUID != "first" {
		t.Fatal("existing link must be kept")
	}
}
