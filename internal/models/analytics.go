package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Bucket is one group of a frequency rollup
type Bucket struct {
	ID    string `json:"_id" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// MonthKey identifies a calendar month
type MonthKey struct {
	Year  int `json:"year" bson:"year"`
	Month int `json:"month" bson:"month"`
}

// MonthlyActivity is the recipe activity of one calendar month
type MonthlyActivity struct {
	ID            MonthKey `json:"_id" bson:"_id"`
	Recipes       int      `json:"recipes" bson:"recipes"`
	TotalLikes    int      `json:"totalLikes" bson:"totalLikes"`
	TotalComments int      `json:"totalComments" bson:"totalComments"`
}

// TopRecipe is a recipe ranked by like count
type TopRecipe struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Title        string             `json:"title" bson:"title"`
	Image        string             `json:"image" bson:"image"`
	Cuisine      string             `json:"cuisine" bson:"cuisine"`
	Author       *UserCompact       `json:"author" bson:"-"`
	AuthorID     primitive.ObjectID `json:"-" bson:"author"`
	LikeCount    int                `json:"likeCount" bson:"likeCount"`
	CommentCount int                `json:"commentCount" bson:"commentCount"`
	ViewCount    int                `json:"viewCount" bson:"viewCount"`
}

// Contributor is an author ranked by published recipe count
type Contributor struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Recipes      int                `json:"recipes" bson:"recipes"`
	TotalLikes   int                `json:"totalLikes" bson:"totalLikes"`
	Username     string             `json:"username" bson:"username"`
	Name         string             `json:"name" bson:"name"`
	ProfileImage string             `json:"profileImage" bson:"profileImage"`
}

// EngagementTotals sums engagement over published recipes
type EngagementTotals struct {
	TotalLikes    int `json:"totalLikes" bson:"totalLikes"`
	TotalComments int `json:"totalComments" bson:"totalComments"`
	TotalViews    int `json:"totalViews" bson:"totalViews"`
}

// AnalyticsSummary holds the headline totals
type AnalyticsSummary struct {
	TotalRecipes  int64 `json:"totalRecipes"`
	TotalUsers    int64 `json:"totalUsers"`
	TotalLikes    int   `json:"totalLikes"`
	TotalComments int   `json:"totalComments"`
	TotalViews    int   `json:"totalViews"`
}

// Analytics is the full analytics rollup
type Analytics struct {
	ByCuisine       []Bucket          `json:"byCuisine"`
	ByDifficulty    []Bucket          `json:"byDifficulty"`
	ByDietaryType   []Bucket          `json:"byDietaryType"`
	ByCategory      []Bucket          `json:"byCategory"`
	MonthlyActivity []MonthlyActivity `json:"monthlyActivity"`
	TopRecipes      []TopRecipe       `json:"topRecipes"`
	TopContributors []Contributor     `json:"topContributors"`
	Summary         AnalyticsSummary  `json:"summary"`
}

// AdminStats is the admin dashboard summary
type AdminStats struct {
	TotalUsers   int64       `json:"totalUsers"`
	TotalRecipes int64       `json:"totalRecipes"`
	TotalAdmins  int64       `json:"totalAdmins"`
	NewUsers     int64       `json:"newUsersThisWeek"`
	NewRecipes   int64       `json:"newRecipesThisWeek"`
	TopRecipes   []TopRecipe `json:"popularRecipes"`
}
