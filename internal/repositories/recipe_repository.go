package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecipeSort selects the ordering of FindRecipes
type RecipeSort string

const (
	SortNewest   RecipeSort = "newest"
	SortOldest   RecipeSort = "oldest"
	SortPopular  RecipeSort = "popular"
	SortTrending RecipeSort = "trending"
)

// RecipeQuery describes a recipe listing. Empty fields do not filter.
type RecipeQuery struct {
	Authors       []primitive.ObjectID
	PublishedOnly bool
	Text          string
	Cuisine       string
	DietaryType   string
	Difficulty    string
	Category      string
	Ingredient    string
	Since         time.Time
	Sort          RecipeSort
	Skip          int64
	Limit         int64
}

// RecipeRepository defines the interface for recipe data operations
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	GetRecipeByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error)
	GetRecipesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, id primitive.ObjectID, update models.RecipeUpdate) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id primitive.ObjectID) error
	DeleteRecipesByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)
	FindRecipes(ctx context.Context, query RecipeQuery) ([]models.Recipe, error)
	CountRecipes(ctx context.Context, query RecipeQuery) (int64, error)
	SimilarRecipes(ctx context.Context, recipe *models.Recipe, limit int64) ([]models.Recipe, error)
	IncrementViewCount(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error)
	SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*models.Recipe, error)
	AddLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Recipe, error)
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Recipe, error)
	PushComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Recipe, error)
	PullComment(ctx context.Context, id, commentID primitive.ObjectID) (*models.Recipe, error)
}

// MongoRecipeRepository implements RecipeRepository and AnalyticsRepository for MongoDB
type MongoRecipeRepository struct {
	collection *mongo.Collection
}

// NewMongoRecipeRepository creates a new MongoRecipeRepository
func NewMongoRecipeRepository(db *mongo.Database) *MongoRecipeRepository {
	return &MongoRecipeRepository{collection: db.Collection("recipes")}
}

// CreateRecipe creates a new recipe in MongoDB
func (r *MongoRecipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	recipe.ID = primitive.NewObjectID()
	recipe.CreatedAt = time.Now()
	recipe.UpdatedAt = recipe.CreatedAt
	recipe.CookingTime.Total = recipe.CookingTime.Prep + recipe.CookingTime.Cook
	recipe.Likes = emptyIDs(recipe.Likes)
	if recipe.Comments == nil {
		recipe.Comments = []models.Comment{}
	}
	if recipe.Images == nil {
		recipe.Images = []string{}
	}
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}

	_, err := r.collection.InsertOne(ctx, recipe)
	return translateError(err)
}

// GetRecipeByID retrieves a recipe by ID from MongoDB
func (r *MongoRecipeRepository) GetRecipeByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe); err != nil {
		return nil, translateError(err)
	}
	return &recipe, nil
}

// GetRecipesByIDs retrieves the recipes that still exist among ids. Order is not preserved.
func (r *MongoRecipeRepository) GetRecipesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeRecipes(ctx, cursor)
}

// UpdateRecipe sets the non-nil fields of update. The author is never touched.
func (r *MongoRecipeRepository) UpdateRecipe(ctx context.Context, id primitive.ObjectID, update models.RecipeUpdate) (*models.Recipe, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	if update.Images != nil {
		set["images"] = update.Images
	}
	if update.Ingredients != nil {
		set["ingredients"] = update.Ingredients
	}
	if update.Steps != nil {
		set["steps"] = update.Steps
	}
	if update.Tags != nil {
		set["tags"] = update.Tags
	}
	if update.CookingTime != nil {
		ct := *update.CookingTime
		ct.Total = ct.Prep + ct.Cook
		set["cookingTime"] = ct
	}
	if update.Servings != nil {
		set["servings"] = *update.Servings
	}
	if update.Difficulty != nil {
		set["difficulty"] = *update.Difficulty
	}
	if update.Cuisine != nil {
		set["cuisine"] = *update.Cuisine
	}
	if update.DietaryType != nil {
		set["dietaryType"] = *update.DietaryType
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Calories != nil {
		set["calories"] = *update.Calories
	}
	if update.Nutrition != nil {
		set["nutrition"] = *update.Nutrition
	}
	if update.VideoURL != nil {
		set["videoUrl"] = *update.VideoURL
	}
	if update.IsPublished != nil {
		set["isPublished"] = *update.IsPublished
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// DeleteRecipe deletes a recipe and its embedded comments
func (r *MongoRecipeRepository) DeleteRecipe(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecipesByAuthor deletes every recipe owned by author
func (r *MongoRecipeRepository) DeleteRecipesByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"author": author})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// FindRecipes runs a listing query. Counts used for ranking are derived from the
// current array sizes inside the pipeline.
func (r *MongoRecipeRepository) FindRecipes(ctx context.Context, query RecipeQuery) ([]models.Recipe, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: recipeFilter(query)}},
		{{Key: "$addFields", Value: bson.M{"likeCount": sizeOf("likes"), "commentCount": sizeOf("comments")}}},
		{{Key: "$sort", Value: recipeSort(query.Sort)}},
	}
	if query.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: query.Skip}})
	}
	if query.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: query.Limit}})
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find recipes: %w", err)
	}
	return decodeRecipes(ctx, cursor)
}

// CountRecipes counts the recipes matching query, ignoring paging and sort
func (r *MongoRecipeRepository) CountRecipes(ctx context.Context, query RecipeQuery) (int64, error) {
	return r.collection.CountDocuments(ctx, recipeFilter(query))
}

// SimilarRecipes returns other published recipes sharing cuisine, dietary type, category or a tag,
// most liked first
func (r *MongoRecipeRepository) SimilarRecipes(ctx context.Context, recipe *models.Recipe, limit int64) ([]models.Recipe, error) {
	or := bson.A{
		bson.M{"cuisine": recipe.Cuisine},
		bson.M{"dietaryType": recipe.DietaryType},
		bson.M{"category": recipe.Category},
	}
	if len(recipe.Tags) > 0 {
		or = append(or, bson.M{"tags": bson.M{"$in": recipe.Tags}})
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$ne": recipe.ID}, "isPublished": true, "$or": or}}},
		{{Key: "$addFields", Value: bson.M{"likeCount": sizeOf("likes")}}},
		{{Key: "$sort", Value: bson.D{{Key: "likeCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("similar recipes: %w", err)
	}
	return decodeRecipes(ctx, cursor)
}

// IncrementViewCount bumps the view counter and returns the updated recipe
func (r *MongoRecipeRepository) IncrementViewCount(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"viewCount": 1}})
}

// SetFeatured sets the featured flag
func (r *MongoRecipeRepository) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*models.Recipe, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"isFeatured": featured, "updatedAt": time.Now()}})
}

// AddLike adds userID to the likes set
func (r *MongoRecipeRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Recipe, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike removes userID from the likes set
func (r *MongoRecipeRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Recipe, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

// PushComment appends comment after the existing ones
func (r *MongoRecipeRepository) PushComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Recipe, error) {
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}
	if comment.Replies == nil {
		comment.Replies = []models.Reply{}
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$push": bson.M{"comments": comment}})
}

// PullComment removes the embedded comment with commentID
func (r *MongoRecipeRepository) PullComment(ctx context.Context, id, commentID primitive.ObjectID) (*models.Recipe, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
}

func (r *MongoRecipeRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Recipe, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var recipe models.Recipe
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&recipe); err != nil {
		return nil, translateError(err)
	}
	return &recipe, nil
}

func recipeFilter(query RecipeQuery) bson.M {
	filter := bson.M{}
	if query.PublishedOnly {
		filter["isPublished"] = true
	}
	if len(query.Authors) > 0 {
		filter["author"] = bson.M{"$in": query.Authors}
	}
	if !query.Since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": query.Since}
	}
	if query.Text != "" {
		pattern := insensitive(query.Text)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	if query.Cuisine != "" {
		filter["cuisine"] = insensitive(query.Cuisine)
	}
	if query.DietaryType != "" {
		filter["dietaryType"] = query.DietaryType
	}
	if query.Difficulty != "" {
		filter["difficulty"] = query.Difficulty
	}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	if query.Ingredient != "" {
		filter["ingredients.name"] = insensitive(query.Ingredient)
	}
	return filter
}

func recipeSort(sort RecipeSort) bson.D {
	switch sort {
	case SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case SortPopular, SortTrending:
		return bson.D{{Key: "likeCount", Value: -1}, {Key: "viewCount", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func insensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func decodeRecipes(ctx context.Context, cursor *mongo.Cursor) ([]models.Recipe, error) {
	defer cursor.Close(ctx)
	recipes := []models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}
