package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "algotrace"
	DefaultMongoCollection = "traces"
)

// mongoRecord is the stored shape of a document: the summary fields are
// queryable, the body is the JSON encoding.
type mongoRecord struct {
	Summary `bson:",inline"`
	Body    []byte `bson:"body"`
}

// MongoStore keeps documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri ("mongodb://" or "mongodb+srv://") and pings
// the server. An empty database selects DefaultMongoDatabase.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if err := errors.ValidateURL(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(DefaultMongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, doc *trace.Document) (string, error) {
	sum, data, err := prepare(doc)
	if err != nil {
		return "", err
	}
	rec := mongoRecord{Summary: sum, Body: data}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": sum.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("save trace %s: %w", sum.ID, err)
	}
	return sum.ID, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*trace.Document, error) {
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get trace %s: %w", id, err)
	}
	return decode(id, rec.Body)
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete trace %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(limit))).
		SetProjection(bson.M{"body": 0})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer cur.Close(ctx)

	var out []Summary
	for cur.Next(ctx) {
		var rec mongoRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		out = append(out, rec.Summary)
	}
	return out, cur.Err()
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
