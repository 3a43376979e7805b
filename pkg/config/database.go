package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections. Postgres is nil unless configured.
type DB struct {
	Mongo    *mongo.Client
	Database *mongo.Database
	Postgres *gorm.DB

	logger logrus.FieldLogger
}

// InitDB connects to MongoDB and, when POSTGRES_URL is set, to PostgreSQL
func InitDB(cfg *Config, logger logrus.FieldLogger) (*DB, error) {
	mongoClient, err := initMongo(cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	logger.WithField("database", cfg.MongoDatabase).Info("Successfully connected to MongoDB")

	db := &DB{
		Mongo:    mongoClient,
		Database: mongoClient.Database(cfg.MongoDatabase),
		logger:   logger,
	}

	if cfg.PostgresURL != "" {
		postgresDB, err := initPostgres(cfg.PostgresURL)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		db.Postgres = postgresDB
		logger.Info("Successfully connected to PostgreSQL")
	}
	return db, nil
}

// Ping checks the primary document store
func (db *DB) Ping(ctx context.Context) error {
	return db.Mongo.Ping(ctx, readpref.Primary())
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.logger.WithError(err).Error("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			db.logger.WithError(err).Error("Error closing PostgreSQL connection")
		} else {
			db.logger.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.logger.WithError(err).Error("Error closing MongoDB connection")
		} else {
			db.logger.Info("MongoDB connection closed")
		}
	}
}
