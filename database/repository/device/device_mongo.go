package deviceRepo

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

// MongoDeviceRepo implements DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	verifiedColl *mongo.Collection
	branchColl   *mongo.Collection
}

// NewMongoDeviceRepo creates a new instance of DeviceRepository using MongoDB.
func NewMongoDeviceRepo() DeviceRepository {
	db := database.MongoClient.Database("tillpoint")
	repo := &MongoDeviceRepo{
		verifiedColl: db.Collection("verified_devices"),
		branchColl:   db.Collection("branch_device_authorizations"),
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
func (r *MongoDeviceRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	_, err := r.verifiedColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}, {Key: "fingerprint", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create verified device index: %w", err)
	}

	_, err = r.branchColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "branchId", Value: 1}, {Key: "fingerprint", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create branch device index: %w", err)
	}
	return nil
}

// GetVerified retrieves the trust record for an account/fingerprint pair.
func (r *MongoDeviceRepo) GetVerified(accountID, fingerprint string) (*models.VerifiedDevice, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var dev models.VerifiedDevice
	filter := bson.M{"accountId": accountID, "fingerprint": fingerprint}
	if err := r.verifiedColl.FindOne(ctx, filter).Decode(&dev); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch verified device: %w", err)
	}
	return &dev, nil
}

// UpsertVerified creates or refreshes the trust record for a fingerprint.
func (r *MongoDeviceRepo) UpsertVerified(accountID, fingerprint string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"accountId": accountID, "fingerprint": fingerprint}
	update := bson.M{
		"$set":         bson.M{"lastUsedAt": now},
		"$setOnInsert": bson.M{"firstVerifiedAt": now},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.verifiedColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert verified device: %w", err)
	}
	return nil
}

// GetBranchAuthorization retrieves the registration record for a branch/fingerprint pair.
func (r *MongoDeviceRepo) GetBranchAuthorization(branchID, fingerprint string) (*models.BranchDeviceAuthorization, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var auth models.BranchDeviceAuthorization
	filter := bson.M{"branchId": branchID, "fingerprint": fingerprint}
	if err := r.branchColl.FindOne(ctx, filter).Decode(&auth); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch branch device authorization: %w", err)
	}
	return &auth, nil
}

// RegisterBranchDevice records a device as authorized for POS use at a branch.
func (r *MongoDeviceRepo) RegisterBranchDevice(auth *models.BranchDeviceAuthorization) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if auth.RegisteredAt.IsZero() {
		auth.RegisteredAt = time.Now()
	}
	_, err := r.branchColl.InsertOne(ctx, auth)
	if err != nil {
		return fmt.Errorf("failed to register branch device: %w", err)
	}
	return nil
}
