package sessionRepo

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

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	coll        *mongo.Collection
	counterColl *mongo.Collection
}

// NewMongoSessionRepo creates a new instance of SessionRepository using MongoDB.
func NewMongoSessionRepo() SessionRepository {
	db := database.MongoClient.Database("tillpoint")
	repo := &MongoSessionRepo{
		coll:        db.Collection("pos_sessions"),
		counterColl: db.Collection("session_counters"),
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

// ensureIndexes creates indexes for fields frequently used in queries. The
// partial unique index on cashierAccountId is what makes the check-then-create
// login path safe: the second of two racing inserts fails instead of producing
// a second open session.
func (r *MongoSessionRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "cashierAccountId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.SessionStatusOpen}),
		},
		{Keys: bson.D{{Key: "branchId", Value: 1}, {Key: "openedAt", Value: -1}}},
		{Keys: bson.D{{Key: "sessionNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Insert creates a new session document.
func (r *MongoSessionRepo) Insert(session *models.POSSession) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrOpenSessionExists
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its unique ID.
func (r *MongoSessionRepo) GetByID(id string) (*models.POSSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var session models.POSSession
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch session with id %s: %w", id, err)
	}
	return &session, nil
}

// GetOpenByCashier retrieves the cashier's open session.
func (r *MongoSessionRepo) GetOpenByCashier(cashierAccountID string) (*models.POSSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"cashierAccountId": cashierAccountID, "status": models.SessionStatusOpen}
	var session models.POSSession
	if err := r.coll.FindOne(ctx, filter).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch open session for cashier %s: %w", cashierAccountID, err)
	}
	return &session, nil
}

// SetStartingCash records the opening balance on an open session.
func (r *MongoSessionRepo) SetStartingCash(id string, amount float64) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.SessionStatusOpen}
	update := bson.M{"$set": bson.M{"startingCash": amount}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to set starting cash for session %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// Close marks an open session closed. The status filter makes the transition
// one-way: a second close matches nothing.
func (r *MongoSessionRepo) Close(id, closedBy string, endingCash *float64, notes string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	set := bson.M{
		"status":   models.SessionStatusClosed,
		"closedAt": time.Now(),
		"closedBy": closedBy,
	}
	if endingCash != nil {
		set["endingCash"] = *endingCash
	}
	if notes != "" {
		set["notes"] = notes
	}

	filter := bson.M{"id": id, "status": models.SessionStatusOpen}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to close session %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// IncrementTotals applies an additive delta to an open session's running totals.
func (r *MongoSessionRepo) IncrementTotals(id string, delta models.TotalsDelta) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.SessionStatusOpen}
	update := bson.M{"$inc": bson.M{
		"totals.sales":            delta.Sales,
		"totals.transactionCount": delta.TransactionCount,
		"totals.discounts":        delta.Discounts,
		"totals.returns":          delta.Returns,
		"totals.taxes":            delta.Taxes,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update totals for session %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// NextSessionNumber atomically advances the per-branch per-day counter.
func (r *MongoSessionRepo) NextSessionNumber(branchID, day string) (int, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"branchId": branchID, "day": day}
	update := bson.M{"$inc": bson.M{"seq": 1}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int `bson:"seq"`
	}
	if err := r.counterColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("failed to advance session counter for branch %s: %w", branchID, err)
	}
	return counter.Seq, nil
}

// FlagOverdue marks sessions still open past the cutoff.
func (r *MongoSessionRepo) FlagOverdue(cutoff time.Time) (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"status":   models.SessionStatusOpen,
		"openedAt": bson.M{"$lt": cutoff},
		"overdue":  bson.M{"$ne": true},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"overdue": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to flag overdue sessions: %w", err)
	}
	return res.ModifiedCount, nil
}
