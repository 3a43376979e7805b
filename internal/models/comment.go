package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCommentLength is the longest comment text accepted, in Unicode code points
const MaxCommentLength = 500

// Comment is embedded in its parent Recipe and deleted with it.
// Comments are stored oldest first.
type Comment struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Text      string               `json:"text" bson:"text"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Replies   []Reply              `json:"replies" bson:"replies"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Reply is embedded in a Comment. Replies never produce notifications.
type Reply struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CommentView is a comment with its author resolved. User is nil when the author no longer exists.
type CommentView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      *UserCompact         `json:"user"`
	Text      string               `json:"text"`
	Likes     []primitive.ObjectID `json:"likes"`
	Replies   []ReplyView          `json:"replies"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// ReplyView is a reply with its author resolved
type ReplyView struct {
	ID        primitive.ObjectID `json:"_id"`
	User      *UserCompact       `json:"user"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CreateCommentRequest defines the request body for adding a comment.
// Length rules are enforced by the engagement service after trimming.
type CreateCommentRequest struct {
	Text string `json:"text"`
}
