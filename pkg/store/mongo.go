package store

import (
	"context"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/numberline/pkg/cache"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "numberline"
	DefaultMongoCollection = "items"
	countersCollection     = "counters"
)

// Mongo stores one document per item. Insertion order is kept in a seq
// field drawn from a counters document.
type Mongo struct {
	client   *mongo.Client
	items    *mongo.Collection
	counters *mongo.Collection
}

type mongoItem struct {
	ID    string  `bson:"_id"`
	Label string  `bson:"label"`
	Value float64 `bson:"value"`
	Seq   int64   `bson:"seq"`
}

// OpenMongo connects to uri and pings the primary, retrying transient
// failures. The database is taken from the URI path, defaulting to
// [DefaultMongoDatabase].
func OpenMongo(ctx context.Context, uri string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "connect mongodb")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	return NewMongo(client, mongoDatabase(uri)), nil
}

func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultMongoDatabase
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return DefaultMongoDatabase
}

// NewMongo uses database db on an existing client. The store takes
// ownership of the client.
func NewMongo(client *mongo.Client, db string) *Mongo {
	d := client.Database(db)
	return &Mongo{
		client:   client,
		items:    d.Collection(DefaultMongoCollection),
		counters: d.Collection(countersCollection),
	}
}

func (m *Mongo) nextSeq(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": DefaultMongoCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	return doc.Seq, err
}

func (m *Mongo) Create(ctx context.Context, it item.Raw) error {
	if err := it.Validate(); err != nil {
		return err
	}
	seq, err := m.nextSeq(ctx)
	if err != nil {
		return netErr(err, "create %q", it.ID)
	}

	doc := mongoItem{ID: it.ID, Label: it.Label, Value: it.Value, Seq: seq}
	if _, err := m.items.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflict(it.ID)
		}
		return netErr(err, "create %q", it.ID)
	}
	return nil
}

func (m *Mongo) EditLabel(ctx context.Context, id, label string) error {
	return m.set(ctx, id, bson.M{"label": label}, errors.ValidateLabel(id, label))
}

func (m *Mongo) EditValue(ctx context.Context, id string, value float64) error {
	return m.set(ctx, id, bson.M{"value": value}, errors.ValidateValue(id, value))
}

// set applies fields to id. An unknown id is reported before invalid, the
// same precedence the other backends give.
func (m *Mongo) set(ctx context.Context, id string, fields bson.M, invalid error) error {
	if invalid != nil {
		n, err := m.items.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if err != nil {
			return netErr(err, "edit %q", id)
		}
		if n == 0 {
			return notFound(id)
		}
		return invalid
	}

	res, err := m.items.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return netErr(err, "edit %q", id)
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	if _, err := m.items.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return netErr(err, "delete %q", id)
	}
	return nil
}

func (m *Mongo) All(ctx context.Context) ([]item.Raw, error) {
	cur, err := m.items.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, netErr(err, "list items")
	}
	var docs []mongoItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, netErr(err, "list items")
	}

	out := make([]item.Raw, len(docs))
	for i, d := range docs {
		out[i] = item.Raw{ID: d.ID, Label: d.Label, Value: d.Value}
	}
	return out, nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

var _ Repository = (*Mongo)(nil)
