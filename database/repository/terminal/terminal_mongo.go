package terminalRepo

import (
	"context"
	"fmt"
	"time"

	"tillpoint/database"
	"tillpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTerminalRepo implements TerminalRepository using MongoDB.
type MongoTerminalRepo struct {
	coll *mongo.Collection
}

// NewMongoTerminalRepo creates a new instance of TerminalRepository using MongoDB.
func NewMongoTerminalRepo() TerminalRepository {
	coll := database.MongoClient.Database("tillpoint").Collection("terminals")
	repo := &MongoTerminalRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoTerminalRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "branchId", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// ListActiveByBranch retrieves all active terminals for a branch.
func (r *MongoTerminalRepo) ListActiveByBranch(branchID string) ([]models.Terminal, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"branchId": branchID, "status": models.TerminalStatusActive}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list terminals for branch %s: %w", branchID, err)
	}
	defer cursor.Close(ctx)

	var terminals []models.Terminal
	for cursor.Next(ctx) {
		var t models.Terminal
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode terminal: %w", err)
		}
		terminals = append(terminals, t)
	}
	return terminals, nil
}

// GetByID retrieves a terminal by its unique ID.
func (r *MongoTerminalRepo) GetByID(id string) (*models.Terminal, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var terminal models.Terminal
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&terminal); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch terminal with id %s: %w", id, err)
	}
	return &terminal, nil
}
