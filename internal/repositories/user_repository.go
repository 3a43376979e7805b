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

// UserField names one of the reference sets stored on a user document
type UserField string

const (
	FollowersField    UserField = "followers"
	FollowingField    UserField = "following"
	SavedRecipesField UserField = "savedRecipes"
)

// UserFilter narrows CountUsers. Zero values match everything.
type UserFilter struct {
	Role  models.Role
	Since time.Time
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error)
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.User, error)
	LinkFirebaseUID(ctx context.Context, id primitive.ObjectID, firebaseUID string) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	ListUsers(ctx context.Context, skip, limit int64) ([]models.User, error)
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	SuggestUsers(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.User, error)
	CountUsers(ctx context.Context, filter UserFilter) (int64, error)
	AddToSet(ctx context.Context, id primitive.ObjectID, field UserField, value primitive.ObjectID) (*models.User, error)
	Pull(ctx context.Context, id primitive.ObjectID, field UserField, value primitive.ObjectID) (*models.User, error)
	PullFromAll(ctx context.Context, field UserField, value primitive.ObjectID) (int64, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a new user. Reference sets start empty.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Followers = emptyIDs(user.Followers)
	user.Following = emptyIDs(user.Following)
	user.SavedRecipes = emptyIDs(user.SavedRecipes)

	_, err := r.collection.InsertOne(ctx, user)
	return translateError(err)
}

// GetUserByID retrieves a user by ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByUsername retrieves a user by username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": firebaseUID})
}

// GetUsersByIDs retrieves the users that still exist among ids. Order is not preserved.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// UpdateProfile sets the non-nil profile fields and returns the updated user
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.ProfileImage != nil {
		set["profileImage"] = *update.ProfileImage
	}
	if update.CoverImage != nil {
		set["coverImage"] = *update.CoverImage
	}
	if update.Website != nil {
		set["website"] = *update.Website
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.IsPrivate != nil {
		set["isPrivate"] = *update.IsPrivate
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// SetPassword replaces the stored password hash
func (r *MongoUserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}})
	return err
}

// SetRole changes the role of a user
func (r *MongoUserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}})
}

// SetVerified changes the verified badge of a user
func (r *MongoUserRepository) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.User, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"isVerified": verified, "updatedAt": time.Now()}})
}

// LinkFirebaseUID attaches a Firebase identity to an account that has none.
// An account already linked to a Firebase identity reports ErrDuplicate.
func (r *MongoUserRepository) LinkFirebaseUID(ctx context.Context, id primitive.ObjectID, firebaseUID string) error {
	filter := bson.M{"_id": id, "firebaseUid": bson.M{"$in": bson.A{nil, ""}}}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"firebaseUid": firebaseUID, "updatedAt": time.Now()}})
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrDuplicate
}

// DeleteUser deletes a user by ID from MongoDB
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers retrieves users newest first
func (r *MongoUserRepository) ListUsers(ctx context.Context, skip, limit int64) ([]models.User, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{}, findOptions)
}

// SearchUsers matches username or name case-insensitively
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"name": pattern},
	}}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

// SuggestUsers returns users outside exclude, most followed first
func (r *MongoUserRepository) SuggestUsers(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": emptyIDs(exclude)}}}},
		{{Key: "$addFields", Value: bson.M{"followerCount": sizeOf("followers")}}},
		{{Key: "$sort", Value: bson.D{{Key: "followerCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers counts users matching filter
func (r *MongoUserRepository) CountUsers(ctx context.Context, filter UserFilter) (int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if !filter.Since.IsZero() {
		query["createdAt"] = bson.M{"$gte": filter.Since}
	}
	return r.collection.CountDocuments(ctx, query)
}

// AddToSet adds value to one of the user's reference sets and returns the updated user.
// Adding a value already present leaves the set unchanged.
func (r *MongoUserRepository) AddToSet(ctx context.Context, id primitive.ObjectID, field UserField, value primitive.ObjectID) (*models.User, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{string(field): value},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

// Pull removes value from one of the user's reference sets and returns the updated user
func (r *MongoUserRepository) Pull(ctx context.Context, id primitive.ObjectID, field UserField, value primitive.ObjectID) (*models.User, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{string(field): value},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

// PullFromAll removes value from the given set on every user holding it.
// It is idempotent; users without the value are untouched.
func (r *MongoUserRepository) PullFromAll(ctx context.Context, field UserField, value primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{string(field): value},
		bson.M{"$pull": bson.M{string(field): value}},
	)
	if err != nil {
		return 0, fmt.Errorf("pull %s from all users: %w", field, err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}
