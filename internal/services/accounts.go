package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens for authenticated users
type TokenIssuer interface {
	Generate(user *models.User) (string, time.Time, error)
}

// TokenVerifier checks a Firebase ID token
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthResult is returned by every successful sign-in
type AuthResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      models.UserResponse `json:"user"`
}

// AccountService registers and authenticates users and edits their own profile
type AccountService struct {
	users    repositories.UserRepository
	tokens   TokenIssuer
	firebase TokenVerifier
	logger   logrus.FieldLogger
}

// NewAccountService creates a new AccountService. firebase may be nil when Firebase is not configured.
func NewAccountService(users repositories.UserRepository, tokens TokenIssuer, firebase TokenVerifier, logger logrus.FieldLogger) *AccountService {
	return &AccountService{users: users, tokens: tokens, firebase: firebase, logger: logger}
}

// Register creates a local account and signs it in
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, Conflict("User with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, Conflict("Username is already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Name:     strings.TrimSpace(req.Name),
		Role:     models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict("User already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.signIn(user)
}

// Login checks an email and password
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, Unauthorized("Invalid credentials")
	}
	return s.signIn(user)
}

// FirebaseLogin exchanges a Firebase ID token for a local session. The account is found by
// Firebase UID, then linked by verified email to an account without a Firebase identity,
// and created when neither matches.
func (s *AccountService) FirebaseLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, Unauthorized("Firebase login is not configured")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.WithError(err).Debug("firebase token rejected")
		return nil, Unauthorized("Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return s.signIn(user)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if email != "" {
		user, err = s.users.GetUserByEmail(ctx, email)
		if err == nil {
			// an unverified email proves nothing about ownership of the local account
			verified, _ := token.Claims["email_verified"].(bool)
			if !verified || user.FirebaseUID != "" {
				return nil, Conflict("Email already registered")
			}
			if err := s.users.LinkFirebaseUID(ctx, user.ID, token.UID); err != nil {
				if errors.Is(err, repositories.ErrDuplicate) {
					return nil, Conflict("Email already registered")
				}
				return nil, fmt.Errorf("link firebase uid: %w", err)
			}
			user.FirebaseUID = token.UID
			return s.signIn(user)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	user = &models.User{
		Username:    firebaseUsername(email),
		Email:       email,
		FirebaseUID: token.UID,
		Name:        name,
		Role:        models.RoleUser,
	}
	if user.Name == "" {
		user.Name = user.Username
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create firebase user: %w", err)
	}
	s.logger.WithField("user_id", user.ID.Hex()).Info("account created from firebase login")
	return s.signIn(user)
}

// Profile returns the actor's own account with derived counts
func (s *AccountService) Profile(ctx context.Context, actor *models.User) (*models.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	resp := models.NewUserResponse(user)
	return &resp, nil
}

// UpdateProfile edits the actor's profile fields
func (s *AccountService) UpdateProfile(ctx context.Context, actor *models.User, update models.ProfileUpdate) (*models.UserResponse, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, Validation("Name is required")
		}
		update.Name = &name
	}
	user, err := s.users.UpdateProfile(ctx, actor.ID, update)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	resp := models.NewUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the actor's password after checking the current one
func (s *AccountService) ChangePassword(ctx context.Context, actor *models.User, req models.ChangePasswordRequest) error {
	user, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return notFoundOr(err, "User")
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return Validation("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return notFoundOr(s.users.SetPassword(ctx, actor.ID, string(hash)), "User")
}

func (s *AccountService) signIn(user *models.User) (*AuthResult, error) {
	token, expires, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expires, User: models.NewUserResponse(user)}, nil
}

// firebaseUsername derives a unique username from the email local part
func firebaseUsername(email string) string {
	base := "user"
	if at := strings.IndexByte(email, '@'); at > 0 {
		base = email[:at]
	}
	var b strings.Builder
	for _, r := range base {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) > 20 {
		clean = clean[:20]
	}
	if clean == "" {
		clean = "user"
	}
	return clean + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
