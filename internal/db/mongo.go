package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/smart-intersection/internal/models"
)

var ErrNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection wraps a MongoDB collection holding run summaries.
type MongoCollection struct {
	Collection *mongo.Collection
}

// NewRunCollection returns the "runs" collection of the given database.
func NewRunCollection(client *mongo.Client, database string) *MongoCollection {
	return &MongoCollection{Collection: client.Database(database).Collection("runs")}
}

// InsertRun stores a finished run.
func (c *MongoCollection) InsertRun(ctx context.Context, run models.RunSummary) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	if run.ID.IsZero() {
		run.ID = primitive.NewObjectID()
	}
	run.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, run)
	return err
}

// FindRuns queries run summaries. Without options the newest runs come first.
func (c *MongoCollection) FindRuns(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (RunCursor, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	if filter == nil {
		filter = bson.M{}
	}
	if len(opts) == 0 {
		opts = append(opts, options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}))
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoRunCursor{cursor: cursor}, nil
}

// mongoRunCursor wraps a MongoDB cursor for run queries.
type mongoRunCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (m *mongoRunCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

func (m *mongoRunCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}
