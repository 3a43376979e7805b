package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the authorization level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a RecipeHub account stored in MongoDB.
// Followers and Following mirror each other across documents: A is in B.Followers
// exactly when B is in A.Following.
type User struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	Email        string               `json:"email,omitempty" bson:"email,omitempty"`
	Password     string               `json:"-" bson:"password"`
	FirebaseUID  string               `json:"-" bson:"firebaseUid,omitempty"`
	Name         string               `json:"name" bson:"name"`
	Bio          string               `json:"bio" bson:"bio"`
	ProfileImage string               `json:"profileImage" bson:"profileImage"`
	CoverImage   string               `json:"coverImage" bson:"coverImage"`
	Role         Role                 `json:"role" bson:"role"`
	Followers    []primitive.ObjectID `json:"followers" bson:"followers"`
	Following    []primitive.ObjectID `json:"following" bson:"following"`
	SavedRecipes []primitive.ObjectID `json:"savedRecipes" bson:"savedRecipes"`
	IsVerified   bool                 `json:"isVerified" bson:"isVerified"`
	IsPrivate    bool                 `json:"isPrivate" bson:"isPrivate"`
	Website      string               `json:"website" bson:"website"`
	Location     string               `json:"location" bson:"location"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin reports whether the user holds admin privilege
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// FollowerCount is derived from the followers set, never stored
func (u *User) FollowerCount() int { return len(u.Followers) }

// FollowingCount is derived from the following set, never stored
func (u *User) FollowingCount() int { return len(u.Following) }

// IsFollowing reports whether u follows id
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

// HasFollower reports whether id follows u
func (u *User) HasFollower(id primitive.ObjectID) bool {
	return containsID(u.Followers, id)
}

// HasSaved reports whether recipeID is in the saved set
func (u *User) HasSaved(recipeID primitive.ObjectID) bool {
	return containsID(u.SavedRecipes, recipeID)
}

// ToCompact returns the public summary used when a user is embedded in other responses
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		Bio:          u.Bio,
		IsVerified:   u.IsVerified,
	}
}

// UserCompact is a populated user reference
type UserCompact struct {
	ID           primitive.ObjectID `json:"_id"`
	Username     string             `json:"username"`
	Name         string             `json:"name"`
	ProfileImage string             `json:"profileImage"`
	Bio          string             `json:"bio,omitempty"`
	IsVerified   bool               `json:"isVerified"`
}

// UserResponse is a user with its virtual counts, as returned to its owner or an admin
type UserResponse struct {
	User
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
}

// NewUserResponse wraps u with its derived counts
func NewUserResponse(u *User) UserResponse {
	return UserResponse{User: *u, FollowerCount: u.FollowerCount(), FollowingCount: u.FollowingCount()}
}

// ProfileUpdate carries the user-editable profile fields; nil fields are left untouched
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio          *string `json:"bio,omitempty" validate:"omitempty,max=200"`
	ProfileImage *string `json:"profileImage,omitempty"`
	CoverImage   *string `json:"coverImage,omitempty"`
	Website      *string `json:"website,omitempty"`
	Location     *string `json:"location,omitempty"`
	IsPrivate    *bool   `json:"isPrivate,omitempty"`
}

// RegisterRequest defines the request body for local registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=1,max=50"`
}

// LoginRequest defines the request body for email/password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest defines the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateRoleRequest defines the request body for an admin role change
type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
