package services

import (
	"context"
	"fmt"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Page is one page of a paginated listing
type Page[T any] struct {
	Items      []T
	Pagination models.Pagination
}

// populator resolves user references into compact summaries.
// A reference that no longer resolves is rendered as nil.
type populator struct {
	users repositories.UserRepository
}

func (p populator) compactUsers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserCompact, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	users, err := p.users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("populate users: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.UserCompact, len(users))
	for i := range users {
		c := users[i].ToCompact()
		byID[users[i].ID] = &c
	}
	return byID, nil
}

// orderedCompacts returns summaries in the order of ids, skipping dangling ids
func (p populator) orderedCompacts(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	byID, err := p.compactUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (p populator) recipeViews(ctx context.Context, recipes []models.Recipe) ([]models.RecipeView, error) {
	var ids []primitive.ObjectID
	for i := range recipes {
		ids = append(ids, recipes[i].Author)
		for _, c := range recipes[i].Comments {
			ids = append(ids, c.User)
			for _, r := range c.Replies {
				ids = append(ids, r.User)
			}
		}
	}
	byID, err := p.compactUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, newRecipeView(&recipes[i], byID))
	}
	return views, nil
}

func (p populator) recipeView(ctx context.Context, recipe *models.Recipe) (*models.RecipeView, error) {
	views, err := p.recipeViews(ctx, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (p populator) commentViews(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	var ids []primitive.ObjectID
	for _, c := range comments {
		ids = append(ids, c.User)
		for _, r := range c.Replies {
			ids = append(ids, r.User)
		}
	}
	byID, err := p.compactUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	return newCommentViews(comments, byID), nil
}

func newRecipeView(recipe *models.Recipe, users map[primitive.ObjectID]*models.UserCompact) models.RecipeView {
	return models.RecipeView{
		Recipe:       *recipe,
		Author:       users[recipe.Author],
		Comments:     newCommentViews(recipe.Comments, users),
		LikeCount:    recipe.LikeCount(),
		CommentCount: recipe.CommentCount(),
	}
}

func newCommentViews(comments []models.Comment, users map[primitive.ObjectID]*models.UserCompact) []models.CommentView {
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		replies := make([]models.ReplyView, 0, len(c.Replies))
		for _, r := range c.Replies {
			replies = append(replies, models.ReplyView{ID: r.ID, User: users[r.User], Text: r.Text, CreatedAt: r.CreatedAt})
		}
		likes := c.Likes
		if likes == nil {
			likes = []primitive.ObjectID{}
		}
		views = append(views, models.CommentView{
			ID:        c.ID,
			User:      users[c.User],
			Text:      c.Text,
			Likes:     likes,
			Replies:   replies,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return views
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > models.MaxPage {
		page = models.MaxPage
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
