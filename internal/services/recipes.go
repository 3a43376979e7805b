package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeService creates, reads and edits recipes
type RecipeService struct {
	recipes  repositories.RecipeRepository
	populate populator
}

// NewRecipeService creates a new RecipeService
func NewRecipeService(users repositories.UserRepository, recipes repositories.RecipeRepository) *RecipeService {
	return &RecipeService{recipes: recipes, populate: populator{users: users}}
}

// Create stores a new recipe owned by author. Unset options take their defaults
// and a recipe is published unless the request says otherwise.
func (s *RecipeService) Create(ctx context.Context, author *models.User, req models.CreateRecipeRequest) (*models.RecipeView, error) {
	recipe := &models.Recipe{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Image:       req.Image,
		Images:      req.Images,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		CookingTime: req.CookingTime,
		Servings:    req.Servings,
		Difficulty:  req.Difficulty,
		Cuisine:     strings.TrimSpace(req.Cuisine),
		DietaryType: req.DietaryType,
		Category:    req.Category,
		Tags:        trimAll(req.Tags),
		Author:      author.ID,
		Calories:    req.Calories,
		Nutrition:   req.Nutrition,
		VideoURL:    req.VideoURL,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
	}
	if recipe.Servings == 0 {
		recipe.Servings = models.DefaultServings
	}
	if recipe.Difficulty == "" {
		recipe.Difficulty = models.DifficultyMedium
	}
	if recipe.DietaryType == "" {
		recipe.DietaryType = models.DefaultDietaryType
	}
	if recipe.Category == "" {
		recipe.Category = models.DefaultCategory
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []models.Ingredient{}
	}
	if recipe.Steps == nil {
		recipe.Steps = []models.Step{}
	}

	if err := s.recipes.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return s.populate.recipeView(ctx, recipe)
}

// Get returns a recipe with its author and comment users resolved, counting the view
func (s *RecipeService) Get(ctx context.Context, id primitive.ObjectID) (*models.RecipeView, error) {
	recipe, err := s.recipes.IncrementViewCount(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	return s.populate.recipeView(ctx, recipe)
}

// Update edits a recipe. Only the author or an admin may edit it; the author never changes.
func (s *RecipeService) Update(ctx context.Context, actor *models.User, id primitive.ObjectID, update models.RecipeUpdate) (*models.RecipeView, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	if recipe.Author != actor.ID && !actor.IsAdmin() {
		return nil, Forbidden("Not authorized to update this recipe")
	}
	if update.Tags != nil {
		update.Tags = trimAll(update.Tags)
	}

	updated, err := s.recipes.UpdateRecipe(ctx, id, update)
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	return s.populate.recipeView(ctx, updated)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
