package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "document_snapshots"

type mongoSnapshot struct {
	ID        string    `bson:"_id"`
	Body      string    `bson:"body"`
	Checksum  string    `bson:"checksum"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend stores the document as a single MongoDB document keyed by name.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
	name   string
}

// ConnectMongo dials uri, pings the server and binds to database.
func ConnectMongo(ctx context.Context, uri, database, name string) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoBackend(client, client.Database(database).Collection(mongoCollection), name), nil
}

// NewMongoBackend wraps an existing collection. client may be nil when the
// caller owns the connection.
func NewMongoBackend(client *mongo.Client, coll *mongo.Collection, name string) *MongoBackend {
	return &MongoBackend{client: client, coll: coll, name: name}
}

func (b *MongoBackend) Name() string { return "mongo" }

func (b *MongoBackend) Load(ctx context.Context) (*models.Document, error) {
	var snap mongoSnapshot
	err := b.coll.FindOne(ctx, bson.M{"_id": b.name}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	return decode([]byte(snap.Body), snap.Checksum)
}

func (b *MongoBackend) Save(ctx context.Context, doc *models.Document) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"body":       string(body),
			"checksum":   utils.ChecksumHex(body),
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": int64(1)},
	}
	_, err = b.coll.UpdateOne(ctx, bson.M{"_id": b.name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Quarantine copies the current document under a new key and removes the
// original, since _id cannot be changed in place.
func (b *MongoBackend) Quarantine(ctx context.Context) (string, error) {
	var snap mongoSnapshot
	if err := b.coll.FindOne(ctx, bson.M{"_id": b.name}).Decode(&snap); err != nil {
		return "", fmt.Errorf("find snapshot: %w", err)
	}
	snap.ID = fmt.Sprintf("%s.corrupt-%d", b.name, time.Now().Unix())
	if _, err := b.coll.InsertOne(ctx, snap); err != nil {
		return "", fmt.Errorf("copy snapshot: %w", err)
	}
	if _, err := b.coll.DeleteOne(ctx, bson.M{"_id": b.name}); err != nil {
		return "", fmt.Errorf("remove snapshot: %w", err)
	}
	return snap.ID, nil
}

func (b *MongoBackend) Close() error {
	if b.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}
