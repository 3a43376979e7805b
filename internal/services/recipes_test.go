package services

import (
	"context"
	"testing"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/testkit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateRecipeDefaults(t *testing.T) {
	h := newHarness(t, false)
	author := testkit.MustUser(t, h.store, "author")

	view, err := h.recipes.Create(context.Background(), author, models.CreateRecipeRequest{
		Title:       "  Pancakes ",
		Description: "Fluffy",
		Image:       "pancakes.jpg",
		Cuisine:     "American",
		Tags:        []string{" breakfast ", "", "sweet"},
		CookingTime: models.CookingTime{Prep: 10, Cook: 15},
	})
	if err != nil {
		t.Fatal(err)
	}
	if view.Title != "Pancakes" || !view.IsPublished {
		t.Fatalf("unexpected recipe %+v", view.Recipe)
	}
	if view.Servings != models.DefaultServings || view.Difficulty != models.DifficultyMedium ||
		view.DietaryType != models.DefaultDietaryType || view.Category != models.DefaultCategory {
		t.Fatal("option defaults not applied")
	}
	if view.CookingTime.Total != 25 {
		t.Fatalf("total cooking time %d", view.CookingTime.Total)
	}
	if len(view.Tags) != 2 || view.Tags[0] != "breakfast" {
		t.Fatalf("tags not trimmed: %q", view.Tags)
	}
	if view.Author == nil || view.Author.ID != author.ID {
		t.Fatal("author should be populated")
	}
	if view.LikeCount != 0 || view.CommentCount != 0 {
		t.Fatal("new recipe has no engagement")
	}
}

func TestCreateRecipeAsDraft(t *testing.T) {
	h := newHarness(t, false)
	author := testkit.MustUser(t, h.store, "author")
	published := false

	view, err := h.recipes.Create(context.Background(), author, models.CreateRecipeRequest{
		Title: "Draft", Description: "d", Image: "i", Cuisine: "c", IsPublished: &published,
	})
	if err != nil {
		t.Fatal(err)
	}
	if view.IsPublished {
		t.Fatal("explicit isPublished=false must be kept")
	}
}

func TestGetRecipeCountsViews(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	author := testkit.MustUser(t, h.store, "author")
	recipe := testkit.MustRecipe(t, h.store, author, "Soup")

	if _, err := h.recipes.Get(ctx, recipe.ID); err != nil {
		t.Fatal(err)
	}
	view, err := h.recipes.Get(ctx, recipe.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.ViewCount != 2 {
		t.Fatalf("expected 2 views, got %d", view.ViewCount)
	}

	_, err = h.recipes.Get(ctx, primitive.NewObjectID())
	assertKind(t, err, KindNotFound)
}

func TestUpdateRecipeAuthorization(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	author := testkit.MustUser(t, h.store, "author")
	stranger := testkit.MustUser(t, h.store, "stranger")
	admin := testkit.MustAdmin(t, h.store, "admin")
	recipe := testkit.MustRecipe(t, h.store, author, "Soup")
	title := "Better Soup"

	_, err := h.recipes.Update(ctx, stranger, recipe.ID, models.RecipeUpdate{Title: &title})
	assertKind(t, err, KindForbidden)

	view, err := h.recipes.Update(ctx, author, recipe.ID, models.RecipeUpdate{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if view.Title != title || view.Recipe.Author != author.ID {
		t.Fatal("title should change and author stay")
	}

	unpublish := false
	view, err = h.recipes.Update(ctx, admin, recipe.ID, models.RecipeUpdate{IsPublished: &unpublish})
	if err != nil {
		t.Fatal(err)
	}
	if view.IsPublished || view.Recipe.Author != author.ID {
		t.Fatal("admin edit keeps the original author")
	}
}
