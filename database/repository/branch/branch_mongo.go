package branchRepo

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

// MongoBranchRepo implements BranchRepository using MongoDB.
type MongoBranchRepo struct {
	coll        *mongo.Collection
	settingColl *mongo.Collection
}

// NewMongoBranchRepo creates a new instance of BranchRepository using MongoDB.
func NewMongoBranchRepo() BranchRepository {
	db := database.MongoClient.Database("tillpoint")
	repo := &MongoBranchRepo{
		coll:        db.Collection("branches"),
		settingColl: db.Collection("branch_settings"),
	}

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
func (r *MongoBranchRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create branch index: %w", err)
	}

	_, err = r.settingColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "branchId", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create branch setting index: %w", err)
	}
	return nil
}

// GetByID retrieves a branch by its unique ID.
func (r *MongoBranchRepo) GetByID(id string) (*models.Branch, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var branch models.Branch
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&branch); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch branch with id %s: %w", id, err)
	}
	return &branch, nil
}

// GetSetting retrieves a branch-scoped setting value.
func (r *MongoBranchRepo) GetSetting(branchID, key string) (string, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var setting models.BranchSetting
	filter := bson.M{"branchId": branchID, "key": key}
	if err := r.settingColl.FindOne(ctx, filter).Decode(&setting); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", fmt.Errorf("failed to fetch setting %s for branch %s: %w", key, branchID, err)
	}
	return setting.Value, nil
}

// PutSetting stores a branch-scoped setting value.
func (r *MongoBranchRepo) PutSetting(branchID, key, value string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"branchId": branchID, "key": key}
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now()}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.settingColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to store setting %s for branch %s: %w", key, branchID, err)
	}
	return nil
}
