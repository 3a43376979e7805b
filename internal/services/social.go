package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/pkg/logger"
	"github.com/anonto42/recipehub/backend/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	userSearchLimit  = 20
	suggestionsLimit = 10
)

// FollowResult is the outcome of a follow toggle
type FollowResult struct {
	IsFollowing   bool `json:"isFollowing"`
	FollowerCount int  `json:"followerCount"`
}

// PublicProfile is a user as seen by other users. Email and password are never included.
type PublicProfile struct {
	ID           primitive.ObjectID   `json:"_id"`
	Username     string               `json:"username"`
	Name         string               `json:"name"`
	Bio          string               `json:"bio"`
	ProfileImage string               `json:"profileImage"`
	CoverImage   string               `json:"coverImage"`
	Role         models.Role          `json:"role"`
	Followers    []models.UserCompact `json:"followers"`
	Following    []models.UserCompact `json:"following"`
	IsVerified   bool                 `json:"isVerified"`
	IsPrivate    bool                 `json:"isPrivate"`
	Website      string               `json:"website"`
	Location     string               `json:"location"`
	CreatedAt    time.Time            `json:"createdAt"`
	RecipeCount  int                  `json:"recipeCount"`
	IsFollowing  bool                 `json:"isFollowing"`
}

// ProfileResult is a public profile with the user's published recipes
type ProfileResult struct {
	User    PublicProfile   `json:"user"`
	Recipes []models.Recipe `json:"recipes"`
}

// SuggestedUser is a follow suggestion
type SuggestedUser struct {
	models.UserCompact
	FollowerCount int `json:"followerCount"`
}

// SocialGraph maintains the follower graph. Every follow edge is written on both user
// documents: A is in B.Followers exactly when B is in A.Following.
type SocialGraph struct {
	users    repositories.UserRepository
	recipes  repositories.RecipeRepository
	tx       repositories.Transactor
	fanout   fanout
	populate populator
	logger   logrus.FieldLogger
}

// NewSocialGraph creates a new SocialGraph
func NewSocialGraph(users repositories.UserRepository, recipes repositories.RecipeRepository, tx repositories.Transactor, publisher EventPublisher, logger logrus.FieldLogger) *SocialGraph {
	return &SocialGraph{
		users:    users,
		recipes:  recipes,
		tx:       tx,
		fanout:   fanout{publisher: publisher, logger: logger},
		populate: populator{users: users},
		logger:   logger,
	}
}

// ToggleFollow follows target when actor does not follow it yet, and unfollows otherwise.
// A follow notification is emitted only on the transition to following.
func (s *SocialGraph) ToggleFollow(ctx context.Context, actor *models.User, targetID primitive.ObjectID) (*FollowResult, error) {
	if actor.ID == targetID {
		return nil, ErrSelfFollow
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return nil, notFoundOr(err, "User")
	}
	current, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}

	next := StateOf(current.IsFollowing(targetID)).Next()
	target, err := s.writeEdge(ctx, actor.ID, targetID, next)
	if err != nil {
		return nil, err
	}
	metrics.RecordToggle("follow", next.IsActive())

	if next.IsActive() {
		s.fanout.emit(ctx, models.NotificationFollow, actor, targetID, nil, followMessage(actor))
	}
	return &FollowResult{IsFollowing: next.IsActive(), FollowerCount: target.FollowerCount()}, nil
}

// writeEdge applies state to both sides of the edge follower -> followee and returns the updated followee.
// Without transactions a failed second write is compensated; if that also fails the graph is
// left inconsistent and ErrPartialWrite is returned.
func (s *SocialGraph) writeEdge(ctx context.Context, follower, followee primitive.ObjectID, state ToggleState) (*models.User, error) {
	apply, undo := s.users.AddToSet, s.users.Pull
	if !state.IsActive() {
		apply, undo = s.users.Pull, s.users.AddToSet
	}

	var updated *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := apply(ctx, follower, repositories.FollowingField, followee); err != nil {
			return notFoundOr(err, "User")
		}
		target, err := apply(ctx, followee, repositories.FollowersField, follower)
		if err != nil {
			if s.tx.Atomic() {
				return err
			}
			return s.compensate(ctx, follower, followee, undo, err)
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SocialGraph) compensate(ctx context.Context, follower, followee primitive.ObjectID, undo func(context.Context, primitive.ObjectID, repositories.UserField, primitive.ObjectID) (*models.User, error), cause error) error {
	fields := logrus.Fields{"user_id": follower.Hex(), "target_id": followee.Hex()}
	if _, err := undo(ctx, follower, repositories.FollowingField, followee); err != nil {
		metrics.PartialWrites.WithLabelValues("follow").Inc()
		logger.LogError(s.logger, "follow graph left inconsistent", errors.Join(cause, err), fields)
		return fmt.Errorf("follow %s -> %s: %w", follower.Hex(), followee.Hex(), errors.Join(repositories.ErrPartialWrite, cause))
	}
	s.logger.WithFields(fields).WithError(cause).Warn("follow write rolled back")
	return notFoundOr(cause, "User")
}

// Followers lists the users following id
func (s *SocialGraph) Followers(ctx context.Context, id primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	return s.populate.orderedCompacts(ctx, user.Followers)
}

// Following lists the users id follows
func (s *SocialGraph) Following(ctx context.Context, id primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	return s.populate.orderedCompacts(ctx, user.Following)
}

// Suggestions returns users the actor does not follow yet, most followed first
func (s *SocialGraph) Suggestions(ctx context.Context, actor *models.User) ([]SuggestedUser, error) {
	exclude := append([]primitive.ObjectID{actor.ID}, actor.Following...)
	users, err := s.users.SuggestUsers(ctx, exclude, suggestionsLimit)
	if err != nil {
		return nil, fmt.Errorf("suggest users: %w", err)
	}
	out := make([]SuggestedUser, 0, len(users))
	for i := range users {
		out = append(out, SuggestedUser{UserCompact: users[i].ToCompact(), FollowerCount: users[i].FollowerCount()})
	}
	return out, nil
}

// Search matches users by username or name. An empty query returns no users.
func (s *SocialGraph) Search(ctx context.Context, query string) ([]models.UserCompact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserCompact{}, nil
	}
	users, err := s.users.SearchUsers(ctx, query, userSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	out := make([]models.UserCompact, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out, nil
}

// Profile returns the public profile of username. viewer may be nil.
func (s *SocialGraph) Profile(ctx context.Context, username string, viewer *models.User) (*ProfileResult, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}

	followers, err := s.populate.orderedCompacts(ctx, user.Followers)
	if err != nil {
		return nil, err
	}
	following, err := s.populate.orderedCompacts(ctx, user.Following)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.FindRecipes(ctx, repositories.RecipeQuery{
		Authors:       []primitive.ObjectID{user.ID},
		PublishedOnly: true,
		Sort:          repositories.SortNewest,
	})
	if err != nil {
		return nil, fmt.Errorf("profile recipes: %w", err)
	}

	profile := PublicProfile{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Bio:          user.Bio,
		ProfileImage: user.ProfileImage,
		CoverImage:   user.CoverImage,
		Role:         user.Role,
		Followers:    followers,
		Following:    following,
		IsVerified:   user.IsVerified,
		IsPrivate:    user.IsPrivate,
		Website:      user.Website,
		Location:     user.Location,
		CreatedAt:    user.CreatedAt,
		RecipeCount:  len(recipes),
		IsFollowing:  viewer != nil && user.HasFollower(viewer.ID),
	}
	return &ProfileResult{User: profile, Recipes: recipes}, nil
}
