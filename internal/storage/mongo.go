package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// snapshotTTL drops snapshots nobody has touched for 90 days.
const snapshotTTL = 90 * 24 * time.Hour

type snapshotDoc struct {
	Profile   string    `bson:"profile"`
	Key       string    `bson:"key"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps snapshots in a "snapshots" collection, one document per
// profile and key.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	profile    string
}

func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

// NewMongoStore creates the collection indexes and returns a store scoped to profile.
func NewMongoStore(ctx context.Context, db *mongo.Database, profile string) (*MongoStore, error) {
	s := &MongoStore{
		client:     db.Client(),
		collection: db.Collection("snapshots"),
		profile:    profile,
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profile", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(snapshotTTL.Seconds())),
		},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) filter(key string) bson.M {
	return bson.M{"profile": s.profile, "key": key}
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc snapshotDoc
	err := s.collection.FindOne(ctx, s.filter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get failed: %w", err)
	}
	return doc.Value, nil
}

func (s *MongoStore) Put(ctx context.Context, key string, value []byte) error {
	update := bson.M{"$set": snapshotDoc{
		Profile:   s.profile,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}}
	_, err := s.collection.UpdateOne(ctx, s.filter(key), update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo upsert failed: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, s.filter(key)); err != nil {
		return fmt.Errorf("mongo delete failed: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
