package testkit

import (
	"context"
	"testing"

	"github.com/anonto42/recipehub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MustUser creates a user with the given username
func MustUser(t testing.TB, s *Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Name: username}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// MustAdmin creates a user holding the admin role
func MustAdmin(t testing.TB, s *Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Name: username, Role: models.RoleAdmin}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create admin %s: %v", username, err)
	}
	return u
}

// RecipeOption adjusts a recipe before MustRecipe stores it
type RecipeOption func(*models.Recipe)

// Draft stores the recipe unpublished
func Draft() RecipeOption {
	return func(r *models.Recipe) { r.IsPublished = false }
}

// Cuisine sets the cuisine
func Cuisine(c string) RecipeOption {
	return func(r *models.Recipe) { r.Cuisine = c }
}

// Tags sets the tags
func Tags(tags ...string) RecipeOption {
	return func(r *models.Recipe) { r.Tags = tags }
}

// Ingredients sets ingredient names
func Ingredients(names ...string) RecipeOption {
	return func(r *models.Recipe) {
		for _, n := range names {
			r.Ingredients = append(r.Ingredients, models.Ingredient{Name: n, Quantity: "1"})
		}
	}
}

// Options sets difficulty, dietary type and category
func Options(difficulty, dietaryType, category string) RecipeOption {
	return func(r *models.Recipe) {
		r.Difficulty, r.DietaryType, r.Category = difficulty, dietaryType, category
	}
}

// MustRecipe creates a published recipe owned by author
func MustRecipe(t testing.TB, s *Store, author *models.User, title string, opts ...RecipeOption) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		Title:       title,
		Description: title + " description",
		Image:       "https://img.example.com/" + title + ".jpg",
		Author:      author.ID,
		Servings:    models.DefaultServings,
		Difficulty:  models.DifficultyMedium,
		Cuisine:     "Italian",
		DietaryType: models.DefaultDietaryType,
		Category:    models.DefaultCategory,
		IsPublished: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := s.CreateRecipe(context.Background(), r); err != nil {
		t.Fatalf("create recipe %s: %v", title, err)
	}
	return r
}

// MustReload fetches the current state of a user
func MustReload(t testing.TB, s *Store, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := s.GetUserByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload user %s: %v", id.Hex(), err)
	}
	return u
}

// MustRecipeState fetches the current state of a recipe
func MustRecipeState(t testing.TB, s *Store, id primitive.ObjectID) *models.Recipe {
	t.Helper()
	r, err := s.GetRecipeByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload recipe %s: %v", id.Hex(), err)
	}
	return r
}
