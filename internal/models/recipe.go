package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Quantity string `json:"quantity" bson:"quantity" validate:"required"`
	Unit     string `json:"unit" bson:"unit"`
}

// Step is one instruction of a recipe
type Step struct {
	StepNumber  int    `json:"stepNumber" bson:"stepNumber" validate:"required,min=1"`
	Instruction string `json:"instruction" bson:"instruction" validate:"required"`
	Image       string `json:"image" bson:"image"`
	Duration    int    `json:"duration" bson:"duration" validate:"min=0"` // minutes
}

// CookingTime is in minutes. Total is always Prep + Cook.
type CookingTime struct {
	Prep  int `json:"prep" bson:"prep" validate:"min=0"`
	Cook  int `json:"cook" bson:"cook" validate:"min=0"`
	Total int `json:"total" bson:"total"`
}

// Nutrition facts per serving
type Nutrition struct {
	Protein float64 `json:"protein" bson:"protein"`
	Carbs   float64 `json:"carbs" bson:"carbs"`
	Fat     float64 `json:"fat" bson:"fat"`
	Fiber   float64 `json:"fiber" bson:"fiber"`
}

// Recipe is authored content stored in MongoDB. Likes is a set of user ids; like and
// comment counts are always derived from the collection sizes.
type Recipe struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Image       string               `json:"image" bson:"image"`
	Images      []string             `json:"images" bson:"images"`
	Ingredients []Ingredient         `json:"ingredients" bson:"ingredients"`
	Steps       []Step               `json:"steps" bson:"steps"`
	CookingTime CookingTime          `json:"cookingTime" bson:"cookingTime"`
	Servings    int                  `json:"servings" bson:"servings"`
	Difficulty  string               `json:"difficulty" bson:"difficulty"`
	Cuisine     string               `json:"cuisine" bson:"cuisine"`
	DietaryType string               `json:"dietaryType" bson:"dietaryType"`
	Category    string               `json:"category" bson:"category"`
	Tags        []string             `json:"tags" bson:"tags"`
	Author      primitive.ObjectID   `json:"author" bson:"author"`
	Likes       []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments    []Comment            `json:"comments" bson:"comments"`
	Calories    int                  `json:"calories" bson:"calories"`
	Nutrition   Nutrition            `json:"nutrition" bson:"nutrition"`
	VideoURL    string               `json:"videoUrl" bson:"videoUrl"`
	IsPublished bool                 `json:"isPublished" bson:"isPublished"`
	IsFeatured  bool                 `json:"isFeatured" bson:"isFeatured"`
	ViewCount   int                  `json:"viewCount" bson:"viewCount"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// LikeCount is derived from the likes set
func (r *Recipe) LikeCount() int { return len(r.Likes) }

// CommentCount is derived from the embedded comments
func (r *Recipe) CommentCount() int { return len(r.Comments) }

// IsLikedBy reports whether userID is in the likes set
func (r *Recipe) IsLikedBy(userID primitive.ObjectID) bool {
	return containsID(r.Likes, userID)
}

// FindComment returns the embedded comment with the given id, or nil
func (r *Recipe) FindComment(id primitive.ObjectID) *Comment {
	for i := range r.Comments {
		if r.Comments[i].ID == id {
			return &r.Comments[i]
		}
	}
	return nil
}

// Recipe option sets, mirrored in request validation
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"

	DefaultDietaryType = "Veg"
	DefaultCategory    = "Other"
	DefaultServings    = 4
)

// RecipeView is a recipe with author and comment users resolved and virtual counts attached
type RecipeView struct {
	Recipe
	Author       *UserCompact  `json:"author"`
	Comments     []CommentView `json:"comments"`
	LikeCount    int           `json:"likeCount"`
	CommentCount int           `json:"commentCount"`
}

// CreateRecipeRequest defines the request body for creating a recipe
type CreateRecipeRequest struct {
	Title       string       `json:"title" validate:"required,max=100"`
	Description string       `json:"description" validate:"required,max=2000"`
	Image       string       `json:"image" validate:"required"`
	Images      []string     `json:"images"`
	Ingredients []Ingredient `json:"ingredients" validate:"dive"`
	Steps       []Step       `json:"steps" validate:"dive"`
	CookingTime CookingTime  `json:"cookingTime"`
	Servings    int          `json:"servings" validate:"omitempty,min=1"`
	Difficulty  string       `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Cuisine     string       `json:"cuisine" validate:"required"`
	DietaryType string       `json:"dietaryType" validate:"omitempty,oneof=Veg Non-Veg Vegan Gluten-Free Keto Other"`
	Category    string       `json:"category" validate:"omitempty,oneof=Breakfast Lunch Dinner Snack Dessert Beverage Appetizer Other"`
	Tags        []string     `json:"tags"`
	Calories    int          `json:"calories" validate:"min=0"`
	Nutrition   Nutrition    `json:"nutrition"`
	VideoURL    string       `json:"videoUrl"`
	IsPublished *bool        `json:"isPublished"`
}

// RecipeUpdate carries editable recipe fields; nil fields are left untouched.
// The author is not editable.
type RecipeUpdate struct {
	Title       *string      `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string      `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Image       *string      `json:"image,omitempty"`
	Images      []string     `json:"images,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty" validate:"omitempty,dive"`
	Steps       []Step       `json:"steps,omitempty" validate:"omitempty,dive"`
	CookingTime *CookingTime `json:"cookingTime,omitempty"`
	Servings    *int         `json:"servings,omitempty" validate:"omitempty,min=1"`
	Difficulty  *string      `json:"difficulty,omitempty" validate:"omitempty,oneof=Easy Medium Hard"`
	Cuisine     *string      `json:"cuisine,omitempty" validate:"omitempty,min=1"`
	DietaryType *string      `json:"dietaryType,omitempty" validate:"omitempty,oneof=Veg Non-Veg Vegan Gluten-Free Keto Other"`
	Category    *string      `json:"category,omitempty" validate:"omitempty,oneof=Breakfast Lunch Dinner Snack Dessert Beverage Appetizer Other"`
	Tags        []string     `json:"tags,omitempty"`
	Calories    *int         `json:"calories,omitempty" validate:"omitempty,min=0"`
	Nutrition   *Nutrition   `json:"nutrition,omitempty"`
	VideoURL    *string      `json:"videoUrl,omitempty"`
	IsPublished *bool        `json:"isPublished,omitempty"`
}
