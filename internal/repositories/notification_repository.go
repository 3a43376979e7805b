package repositories

import (
	"context"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations.
// Notifications are append-only; the only mutation is the bulk read flag.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, limit int64) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification inserts a notification. An id already set by the producer is kept.
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return translateError(err)
}

// GetByRecipientID returns the latest notifications of a recipient, newest first
func (r *MongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipient": recipientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// GetUnreadCount counts the unread notifications of a recipient
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient": recipientID, "isRead": false})
}

// MarkAllAsRead flags every unread notification of a recipient as read
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipientID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// NotificationRecord is the relational row behind PostgresNotificationRepository.
// Document ids are stored as their hex form.
type NotificationRecord struct {
	ID          string    `gorm:"primaryKey;size:24"`
	RecipientID string    `gorm:"size:24;index:idx_notifications_recipient_read,priority:1"`
	SenderID    string    `gorm:"size:24"`
	Type        string    `gorm:"size:20"`
	RecipeID    *string   `gorm:"size:24"`
	Message     string
	IsRead      bool      `gorm:"default:false;index:idx_notifications_recipient_read,priority:2"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName pins the table name
func (NotificationRecord) TableName() string { return "notifications" }

func newNotificationRecord(n *models.Notification) NotificationRecord {
	rec := NotificationRecord{
		ID:          n.ID.Hex(),
		RecipientID: n.Recipient.Hex(),
		SenderID:    n.Sender.Hex(),
		Type:        string(n.Type),
		Message:     n.Message,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
	if n.Recipe != nil {
		hex := n.Recipe.Hex()
		rec.RecipeID = &hex
	}
	return rec
}

func (rec NotificationRecord) toModel() models.Notification {
	n := models.Notification{
		Type:      models.NotificationType(rec.Type),
		Message:   rec.Message,
		IsRead:    rec.IsRead,
		CreatedAt: rec.CreatedAt,
	}
	n.ID, _ = primitive.ObjectIDFromHex(rec.ID)
	n.Recipient, _ = primitive.ObjectIDFromHex(rec.RecipientID)
	n.Sender, _ = primitive.ObjectIDFromHex(rec.SenderID)
	if rec.RecipeID != nil {
		if id, err := primitive.ObjectIDFromHex(*rec.RecipeID); err == nil {
			n.Recipe = &id
		}
	}
	return n
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// AutoMigrate creates or updates the notifications table
func (r *PostgresNotificationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&NotificationRecord{})
}

// CreateNotification inserts a notification row
func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	rec := newNotificationRecord(notification)
	return translateError(r.db.WithContext(ctx).Create(&rec).Error)
}

// GetByRecipientID returns the latest notifications of a recipient, newest first
func (r *PostgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	var records []NotificationRecord
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID.Hex()).
		Order("created_at DESC").
		Limit(int(limit)).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	notifications := make([]models.Notification, 0, len(records))
	for _, rec := range records {
		notifications = append(notifications, rec.toModel())
	}
	return notifications, nil
}

// GetUnreadCount counts the unread notifications of a recipient
func (r *PostgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("recipient_id = ? AND is_read = false", recipientID.Hex()).
		Count(&count).Error
	return count, err
}

// MarkAllAsRead flags every unread notification of a recipient as read
func (r *PostgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("recipient_id = ? AND is_read = false", recipientID.Hex()).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
