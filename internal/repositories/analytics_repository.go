package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnalyticsRepository defines read-only rollups over published recipes
type AnalyticsRepository interface {
	CountByField(ctx context.Context, field string, limit int64) ([]models.Bucket, error)
	MonthlyActivity(ctx context.Context, since time.Time) ([]models.MonthlyActivity, error)
	TopRecipes(ctx context.Context, limit int64, publishedOnly bool) ([]models.TopRecipe, error)
	TopContributors(ctx context.Context, limit int64) ([]models.Contributor, error)
	EngagementTotals(ctx context.Context) (models.EngagementTotals, error)
}

var publishedMatch = bson.D{{Key: "$match", Value: bson.M{"isPublished": true}}}

// CountByField groups published recipes by field, most frequent first. A limit of 0 returns every group.
func (r *MongoRecipeRepository) CountByField(ctx context.Context, field string, limit int64) ([]models.Bucket, error) {
	pipeline := mongo.Pipeline{
		publishedMatch,
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	buckets := []models.Bucket{}
	if err := r.aggregate(ctx, pipeline, &buckets); err != nil {
		return nil, fmt.Errorf("count by %s: %w", field, err)
	}
	return buckets, nil
}

// MonthlyActivity groups published recipes created since the given time by calendar month, oldest first.
// Months without recipes are absent.
func (r *MongoRecipeRepository) MonthlyActivity(ctx context.Context, since time.Time) ([]models.MonthlyActivity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPublished": true, "createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
			},
			"recipes":       bson.M{"$sum": 1},
			"totalLikes":    bson.M{"$sum": sizeOf("likes")},
			"totalComments": bson.M{"$sum": sizeOf("comments")},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}

	activity := []models.MonthlyActivity{}
	if err := r.aggregate(ctx, pipeline, &activity); err != nil {
		return nil, fmt.Errorf("monthly activity: %w", err)
	}
	return activity, nil
}

// TopRecipes ranks recipes by current like count
func (r *MongoRecipeRepository) TopRecipes(ctx context.Context, limit int64, publishedOnly bool) ([]models.TopRecipe, error) {
	match := bson.M{}
	if publishedOnly {
		match["isPublished"] = true
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{"likeCount": sizeOf("likes"), "commentCount": sizeOf("comments")}}},
		{{Key: "$sort", Value: bson.D{{Key: "likeCount", Value: -1}, {Key: "viewCount", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"title": 1, "image": 1, "cuisine": 1, "author": 1,
			"likeCount": 1, "commentCount": 1, "viewCount": 1,
		}}},
	}

	top := []models.TopRecipe{}
	if err := r.aggregate(ctx, pipeline, &top); err != nil {
		return nil, fmt.Errorf("top recipes: %w", err)
	}
	return top, nil
}

// TopContributors ranks authors by published recipe count and joins back their identity fields.
// Authors whose user document is gone are dropped by the unwind.
func (r *MongoRecipeRepository) TopContributors(ctx context.Context, limit int64) ([]models.Contributor, error) {
	pipeline := mongo.Pipeline{
		publishedMatch,
		{{Key: "$group", Value: bson.M{
			"_id":        "$author",
			"recipes":    bson.M{"$sum": 1},
			"totalLikes": bson.M{"$sum": sizeOf("likes")},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "recipes", Value: -1}, {Key: "totalLikes", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{"from": "users", "localField": "_id", "foreignField": "_id", "as": "user"}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"recipes":      1,
			"totalLikes":   1,
			"username":     "$user.username",
			"name":         "$user.name",
			"profileImage": "$user.profileImage",
		}}},
	}

	contributors := []models.Contributor{}
	if err := r.aggregate(ctx, pipeline, &contributors); err != nil {
		return nil, fmt.Errorf("top contributors: %w", err)
	}
	return contributors, nil
}

// EngagementTotals sums likes, comments and views over published recipes
func (r *MongoRecipeRepository) EngagementTotals(ctx context.Context) (models.EngagementTotals, error) {
	pipeline := mongo.Pipeline{
		publishedMatch,
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalLikes":    bson.M{"$sum": sizeOf("likes")},
			"totalComments": bson.M{"$sum": sizeOf("comments")},
			"totalViews":    bson.M{"$sum": "$viewCount"},
		}}},
	}

	var totals []models.EngagementTotals
	if err := r.aggregate(ctx, pipeline, &totals); err != nil {
		return models.EngagementTotals{}, fmt.Errorf("engagement totals: %w", err)
	}
	if len(totals) == 0 {
		return models.EngagementTotals{}, nil
	}
	return totals[0], nil
}

func (r *MongoRecipeRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
