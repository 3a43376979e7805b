package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/pkg/logger"
	"github.com/anonto42/recipehub/backend/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeResult is the outcome of a like toggle
type LikeResult struct {
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

// SaveResult is the outcome of a save toggle
type SaveResult struct {
	IsSaved bool `json:"isSaved"`
}

// EngagementService maintains likes, comments and saves on recipes
type EngagementService struct {
	users    repositories.UserRepository
	recipes  repositories.RecipeRepository
	tx       repositories.Transactor
	fanout   fanout
	populate populator
	logger   logrus.FieldLogger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(users repositories.UserRepository, recipes repositories.RecipeRepository, tx repositories.Transactor, publisher EventPublisher, logger logrus.FieldLogger) *EngagementService {
	return &EngagementService{
		users:    users,
		recipes:  recipes,
		tx:       tx,
		fanout:   fanout{publisher: publisher, logger: logger},
		populate: populator{users: users},
		logger:   logger,
	}
}

// ToggleLike flips the user's membership in the recipe's likes.
// Liking your own recipe is allowed and never notifies.
func (s *EngagementService) ToggleLike(ctx context.Context, actor *models.User, recipeID primitive.ObjectID) (*LikeResult, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}

	next := StateOf(recipe.IsLikedBy(actor.ID)).Next()
	if next.IsActive() {
		recipe, err = s.recipes.AddLike(ctx, recipeID, actor.ID)
	} else {
		recipe, err = s.recipes.RemoveLike(ctx, recipeID, actor.ID)
	}
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	metrics.RecordToggle("like", next.IsActive())

	if next.IsActive() {
		s.fanout.emit(ctx, models.NotificationLike, actor, recipe.Author, &recipe.ID, likeMessage(actor))
	}
	return &LikeResult{IsLiked: next.IsActive(), LikeCount: recipe.LikeCount()}, nil
}

// AddComment appends a comment and returns the recipe's comments with users resolved
func (s *EngagementService) AddComment(ctx context.Context, actor *models.User, recipeID primitive.ObjectID, text string) ([]models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validation("Comment text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, Validation(fmt.Sprintf("Comment cannot exceed %d characters", models.MaxCommentLength))
	}

	if _, err := s.recipes.GetRecipeByID(ctx, recipeID); err != nil {
		return nil, notFoundOr(err, "Recipe")
	}

	now := time.Now()
	recipe, err := s.recipes.PushComment(ctx, recipeID, models.Comment{
		ID:        primitive.NewObjectID(),
		User:      actor.ID,
		Text:      text,
		Likes:     []primitive.ObjectID{},
		Replies:   []models.Reply{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	metrics.CommentsAdded.Inc()

	s.fanout.emit(ctx, models.NotificationComment, actor, recipe.Author, &recipe.ID, commentMessage(actor))
	return s.populate.commentViews(ctx, recipe.Comments)
}

// DeleteComment removes a comment. Only its author or an admin may delete it.
func (s *EngagementService) DeleteComment(ctx context.Context, actor *models.User, recipeID, commentID primitive.ObjectID) error {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return notFoundOr(err, "Recipe")
	}
	comment := recipe.FindComment(commentID)
	if comment == nil {
		return NotFound("Comment")
	}
	if comment.User != actor.ID && !actor.IsAdmin() {
		return Forbidden("Not authorized to delete this comment")
	}

	if _, err := s.recipes.PullComment(ctx, recipeID, commentID); err != nil {
		return notFoundOr(err, "Recipe")
	}
	return nil
}

// DeleteRecipe removes a recipe with its embedded comments and takes it out of every
// user's saved recipes. Only the author or an admin may delete it.
func (s *EngagementService) DeleteRecipe(ctx context.Context, actor *models.User, recipeID primitive.ObjectID) error {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return notFoundOr(err, "Recipe")
	}
	if recipe.Author != actor.ID && !actor.IsAdmin() {
		return Forbidden("Not authorized to delete this recipe")
	}
	return s.removeRecipe(ctx, recipeID)
}

func (s *EngagementService) removeRecipe(ctx context.Context, recipeID primitive.ObjectID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.recipes.DeleteRecipe(ctx, recipeID); err != nil {
			return notFoundOr(err, "Recipe")
		}
		if _, err := s.users.PullFromAll(ctx, repositories.SavedRecipesField, recipeID); err != nil {
			logger.LogError(s.logger, "saved recipes cascade failed", err, logrus.Fields{"recipe_id": recipeID.Hex()})
			return err
		}
		return nil
	})
}

// ToggleSave flips the recipe's membership in the actor's saved recipes
func (s *EngagementService) ToggleSave(ctx context.Context, actor *models.User, recipeID primitive.ObjectID) (*SaveResult, error) {
	if _, err := s.recipes.GetRecipeByID(ctx, recipeID); err != nil {
		return nil, notFoundOr(err, "Recipe")
	}
	current, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}

	next := StateOf(current.HasSaved(recipeID)).Next()
	if next.IsActive() {
		_, err = s.users.AddToSet(ctx, actor.ID, repositories.SavedRecipesField, recipeID)
	} else {
		_, err = s.users.Pull(ctx, actor.ID, repositories.SavedRecipesField, recipeID)
	}
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	metrics.RecordToggle("save", next.IsActive())
	return &SaveResult{IsSaved: next.IsActive()}, nil
}

// SavedRecipes returns the actor's saved recipes in the order they were saved.
// Recipes deleted since are skipped.
func (s *EngagementService) SavedRecipes(ctx context.Context, actor *models.User) ([]models.RecipeView, error) {
	current, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	found, err := s.recipes.GetRecipesByIDs(ctx, current.SavedRecipes)
	if err != nil {
		return nil, fmt.Errorf("saved recipes: %w", err)
	}

	byID := make(map[primitive.ObjectID]models.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	ordered := make([]models.Recipe, 0, len(found))
	for _, id := range current.SavedRecipes {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return s.populate.recipeViews(ctx, ordered)
}
