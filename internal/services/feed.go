package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// TrendingWindow is how far back explore looks for recipes
	TrendingWindow = 7 * 24 * time.Hour

	recommendationsLimit = 6
)

// SearchParams are the recipe search filters. Empty fields do not filter.
type SearchParams struct {
	Query       string
	Cuisine     string
	DietaryType string
	Difficulty  string
	Ingredient  string
	Category    string
	Sort        string
	Page        int
	Limit       int
}

// FeedService composes recipe listings from the social graph and search filters
type FeedService struct {
	users    repositories.UserRepository
	recipes  repositories.RecipeRepository
	populate populator
	now      func() time.Time
}

// NewFeedService creates a new FeedService
func NewFeedService(users repositories.UserRepository, recipes repositories.RecipeRepository) *FeedService {
	return &FeedService{
		users:    users,
		recipes:  recipes,
		populate: populator{users: users},
		now:      time.Now,
	}
}

// WithClock replaces the clock used for time windows
func (s *FeedService) WithClock(now func() time.Time) *FeedService {
	s.now = now
	return s
}

// Feed returns published recipes by the viewer and everyone they follow, newest first
func (s *FeedService) Feed(ctx context.Context, viewer *models.User, page, limit int) (*Page[models.RecipeView], error) {
	current, err := s.users.GetUserByID(ctx, viewer.ID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	authors := append([]primitive.ObjectID{current.ID}, current.Following...)
	return s.list(ctx, repositories.RecipeQuery{
		Authors:       authors,
		PublishedOnly: true,
		Sort:          repositories.SortNewest,
	}, page, limit)
}

// Explore returns published recipes from the trending window ranked by likes, then views
func (s *FeedService) Explore(ctx context.Context, page, limit int) (*Page[models.RecipeView], error) {
	return s.list(ctx, repositories.RecipeQuery{
		PublishedOnly: true,
		Since:         s.now().Add(-TrendingWindow),
		Sort:          repositories.SortTrending,
	}, page, limit)
}

// List returns every published recipe, newest first
func (s *FeedService) List(ctx context.Context, page, limit int) (*Page[models.RecipeView], error) {
	return s.list(ctx, repositories.RecipeQuery{PublishedOnly: true, Sort: repositories.SortNewest}, page, limit)
}

// Search filters published recipes. Sort is one of newest, oldest or popular; anything else means newest.
func (s *FeedService) Search(ctx context.Context, params SearchParams) (*Page[models.RecipeView], error) {
	sort := repositories.SortNewest
	switch repositories.RecipeSort(params.Sort) {
	case repositories.SortOldest:
		sort = repositories.SortOldest
	case repositories.SortPopular:
		sort = repositories.SortPopular
	}
	return s.list(ctx, repositories.RecipeQuery{
		PublishedOnly: true,
		Text:          strings.TrimSpace(params.Query),
		Cuisine:       strings.TrimSpace(params.Cuisine),
		DietaryType:   params.DietaryType,
		Difficulty:    params.Difficulty,
		Category:      params.Category,
		Ingredient:    strings.TrimSpace(params.Ingredient),
		Sort:          sort,
	}, params.Page, params.Limit)
}

// MyRecipes returns all of the viewer's recipes, published or not, newest first
func (s *FeedService) MyRecipes(ctx context.Context, viewer *models.User) ([]models.RecipeView, error) {
	recipes, err := s.recipes.FindRecipes(ctx, repositories.RecipeQuery{
		Authors: []primitive.ObjectID{viewer.ID},
		Sort:    repositories.SortNewest,
	})
	if err != nil {
		return nil, fmt.Errorf("my recipes: %w", err)
	}
	return s.populate.recipeViews(ctx, recipes)
}

// Recommendations returns other published recipes similar to recipeID, most liked first
func (s *FeedService) Recommendations(ctx context.Context, recipeID primitive.ObjectID) ([]models.RecipeView, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	similar, err := s.recipes.SimilarRecipes(ctx, recipe, recommendationsLimit)
	if err != nil {
		return nil, err
	}
	return s.populate.recipeViews(ctx, similar)
}

func (s *FeedService) list(ctx context.Context, query repositories.RecipeQuery, page, limit int) (*Page[models.RecipeView], error) {
	page, limit = clampPage(page, limit)
	pagination := models.NewPagination(page, limit, 0)
	query.Skip = pagination.Skip()
	query.Limit = int64(limit)

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
