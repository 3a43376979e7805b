package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const newContentWindow = 7 * 24 * time.Hour

// AdminService backs the moderation dashboard. Callers must already hold the admin role.
type AdminService struct {
	users      repositories.UserRepository
	recipes    repositories.RecipeRepository
	tx         repositories.Transactor
	engagement *EngagementService
	aggregator *Aggregator
	populate   populator
	logger     logrus.FieldLogger
	now        func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(users repositories.UserRepository, recipes repositories.RecipeRepository, tx repositories.Transactor, engagement *EngagementService, aggregator *Aggregator, logger logrus.FieldLogger) *AdminService {
	return &AdminService{
		users:      users,
		recipes:    recipes,
		tx:         tx,
		engagement: engagement,
		aggregator: aggregator,
		populate:   populator{users: users},
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for the new content window
func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	s.now = now
	return s
}

// Stats returns the dashboard totals
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	since := s.now().Add(-newContentWindow)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.CountUsers(ctx, repositories.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRecipes, err = s.recipes.CountRecipes(ctx, repositories.RecipeQuery{})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalAdmins, err = s.users.CountUsers(ctx, repositories.UserFilter{Role: models.RoleAdmin})
		return err
	})
	g.Go(func() (err error) {
		stats.NewUsers, err = s.users.CountUsers(ctx, repositories.UserFilter{Since: since})
		return err
	})
	g.Go(func() (err error) {
		stats.NewRecipes, err = s.recipes.CountRecipes(ctx, repositories.RecipeQuery{Since: since})
		return err
	})
	g.Go(func() (err error) {
		stats.TopRecipes, err = s.aggregator.topRecipes(ctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers pages through every account, newest first
func (s *AdminService) ListUsers(ctx context.Context, page, limit int) (*Page[models.UserResponse], error) {
	page, limit = clampPage(page, limit)
	pagination := models.NewPagination(page, limit, 0)

	users, err := s.users.ListUsers(ctx, pagination.Skip(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.CountUsers(ctx, repositories.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	items := make([]models.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, models.NewUserResponse(&users[i]))
	}
	return &Page[models.UserResponse]{Items: items, Pagination: models.NewPagination(page, limit, total)}, nil
}

// ListRecipes pages through every recipe, published or not, newest first
func (s *AdminService) ListRecipes(ctx context.Context, page, limit int) (*Page[models.RecipeView], error) {
	page, limit = clampPage(page, limit)
	pagination := models.NewPagination(page, limit, 0)
	query := repositories.RecipeQuery{Sort: repositories.SortNewest, Skip: pagination.Skip(), Limit: int64(limit)}

	recipes, err := s.recipes.FindRecipes(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.recipes.CountRecipes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}
	views, err := s.populate.recipeViews(ctx, recipes)
	if err != nil {
		return nil, err
	}
	return &Page[models.RecipeView]{Items: views, Pagination: models.NewPagination(page, limit, total)}, nil
}

// UpdateRole changes a user's role
func (s *AdminService) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.UserResponse, error) {
	if !role.Valid() {
		return nil, Validation("Invalid role")
	}
	user, err := s.users.SetRole(ctx, id, role)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	resp := models.NewUserResponse(user)
	return &resp, nil
}

// ToggleVerified flips a user's verified badge
func (s *AdminService) ToggleVerified(ctx context.Context, id primitive.ObjectID) (*models.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	updated, err := s.users.SetVerified(ctx, id, StateOf(user.IsVerified).Next().IsActive())
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	resp := models.NewUserResponse(updated)
	return &resp, nil
}

// ToggleFeatured flips a recipe's featured flag
func (s *AdminService) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	updated, err := s.recipes.SetFeatured(ctx, id, StateOf(recipe.IsFeatured).Next().IsActive())
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	return updated, nil
}

// DeleteRecipe removes any recipe with the same cascade as an owner delete
func (s *AdminService) DeleteRecipe(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	return s.engagement.DeleteRecipe(ctx, actor, id)
}

// DeleteUser removes a user, their recipes and every follow edge pointing at them.
// The user's recipes are also taken out of every saved list.
func (s *AdminService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		return notFoundOr(err, "User")
	}
	owned, err := s.recipes.FindRecipes(ctx, repositories.RecipeQuery{Authors: []primitive.ObjectID{id}})
	if err != nil {
		return fmt.Errorf("find user recipes: %w", err)
	}

	fields := logrus.Fields{"user_id": id.Hex()}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, r := range owned {
			if _, err := s.users.PullFromAll(ctx, repositories.SavedRecipesField, r.ID); err != nil {
				logger.LogError(s.logger, "saved recipes cascade failed", err, logrus.Fields{"user_id": id.Hex(), "recipe_id": r.ID.Hex()})
				return err
			}
		}
		deleted, err := s.recipes.DeleteRecipesByAuthor(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user recipes: %w", err)
		}
		if _, err := s.users.PullFromAll(ctx, repositories.FollowersField, id); err != nil {
			return err
		}
		if _, err := s.users.PullFromAll(ctx, repositories.FollowingField, id); err != nil {
			return err
		}
		if err := s.users.DeleteUser(ctx, id); err != nil {
			return notFoundOr(err, "User")
		}
		s.logger.WithFields(fields).WithField("recipes_deleted", deleted).Info("user deleted")
		return nil
	})
}
