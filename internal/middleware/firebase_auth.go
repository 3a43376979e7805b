package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/recipehub/backend/internal/models"
)

// FirebaseVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// resolveFirebase accepts a Firebase ID token in place of a session token.
// The Firebase account must already be linked through the Firebase login endpoint.
func (a *Authenticator) resolveFirebase(ctx context.Context, idToken string) (*models.User, error) {
	token, err := a.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return a.users.GetUserByFirebaseUID(ctx, token.UID)
}
