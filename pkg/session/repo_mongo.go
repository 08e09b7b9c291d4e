package session

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "session_records"

type MongoRepo struct {
	collection *mongo.Collection
}

type mongoRecord struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection(mongoCollection),
	}
}

func (r *MongoRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var rec mongoRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(rec.Value), nil
}

func (r *MongoRepo) Put(ctx context.Context, key string, value []byte) error {
	rec := mongoRecord{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, rec, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoRepo) Delete(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
