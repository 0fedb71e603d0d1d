package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

const (
	profilesCollection    = "profiles"
	projectsCollection    = "projects"
	proposalsCollection   = "proposals"
	acceptancesCollection = "acceptance_intents"
	messagesCollection    = "messages"
	reviewsCollection     = "reviews"
	attachmentsCollection = "project_files"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes every repository relies on. The unique
// indexes back ErrUserExists and ErrDuplicate.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	keyedOnly := options.Index().SetUnique(true).
		SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}})

	plan := map[string][]mongo.IndexModel{
		profilesCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		projectsCollection: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "idempotency_key", Value: 1}}, Options: keyedOnly},
		},
		proposalsCollection: {
			{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "engineer_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "engineer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		acceptancesCollection: {
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "updated_at", Value: 1}}},
			{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "state", Value: 1}}},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "reviewee_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "project_id", Value: 1}}},
		},
		attachmentsCollection: {
			{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// joinProfile returns the pipeline stages embedding the profile referenced by
// localField under as. Unmatched rows keep an absent field.
func joinProfile(localField, as string) bson.A {
	return bson.A{
		bson.M{"$lookup": bson.M{
			"from":         profilesCollection,
			"localField":   localField,
			"foreignField": "_id",
			"as":           as,
		}},
		bson.M{"$unwind": bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}},
		bson.M{"$project": bson.M{as + ".password_hash": 0, as + ".email": 0}},
	}
}

func pipeline(stages ...bson.A) bson.A {
	out := bson.A{}
	for _, s := range stages {
		out = append(out, s...)
	}
	return out
}
