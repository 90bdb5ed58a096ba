package otpRepo

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

// MongoOTPRepo implements OTPRepository using MongoDB.
type MongoOTPRepo struct {
	coll *mongo.Collection
}

// NewMongoOTPRepo creates a new instance of OTPRepository using MongoDB.
func NewMongoOTPRepo() OTPRepository {
	coll := database.MongoClient.Database("tillpoint").Collection("one_time_codes")
	repo := &MongoOTPRepo{coll: coll}

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
func (r *MongoOTPRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "accountId", Value: 1}, {Key: "issuedAt", Value: -1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new code record.
func (r *MongoOTPRepo) Create(code *models.OneTimeCode) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to create one-time code: %w", err)
	}
	return nil
}

// LatestUnused retrieves the most recently issued unused code for an account.
func (r *MongoOTPRepo) LatestUnused(accountID string) (*models.OneTimeCode, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "issuedAt", Value: -1}})
	var code models.OneTimeCode
	err := r.coll.FindOne(ctx, bson.M{"accountId": accountID, "used": false}, opts).Decode(&code)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest code for account %s: %w", accountID, err)
	}
	return &code, nil
}

// MarkUsed flags a code as consumed.
func (r *MongoOTPRepo) MarkUsed(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{"$set": bson.M{"used": true, "usedAt": now}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark code %s used: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("one-time code with id %s not found", id)
	}
	return nil
}

// PurgeExpired deletes code records whose expiry is before the cutoff.
func (r *MongoOTPRepo) PurgeExpired(cutoff time.Time) (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired codes: %w", err)
	}
	return res.DeletedCount, nil
}
