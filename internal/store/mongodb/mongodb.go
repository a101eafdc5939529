package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/devevents/internal/db"
	"github.com/geocoder89/devevents/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	URI         string
	Database    string
	DialTimeout time.Duration
}

// Store is a MongoDB-backed store.Gateway. The client is dialed on first use.
type Store struct {
	conn     *db.Lazy[*mongo.Client]
	database string
}

func New(cfg Config, schema store.Schema) *Store {
	s := &Store{database: cfg.Database}

	s.conn = db.NewLazy(func(ctx context.Context) (*mongo.Client, error) {
		client, err := db.OpenMongo(ctx, cfg.URI)
		if err != nil {
			return nil, err
		}

		for name, indexes := range schema {
			if err := createIndexes(ctx, client.Database(cfg.Database).Collection(name), indexes); err != nil {
				_ = client.Disconnect(ctx)
				return nil, fmt.Errorf("%s indexes: %w", name, err)
			}
		}
		return client, nil
	}, cfg.DialTimeout)

	return s
}

func (s *Store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := s.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	return client.Database(s.database).Collection(name), nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	return mapErr(coll.FindOne(ctx, toBSON(filter)).Decode(out))
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	return mapErr(coll.FindOne(ctx, bson.M{"_id": id}).Decode(out))
}

func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions, out any) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	findOpts := options.Find()
	if opts.SortBy != "" {
		dir := 1
		if opts.Desc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: fieldName(opts.SortBy), Value: dir}, {Key: "_id", Value: dir}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := coll.Find(ctx, toBSON(filter), findOpts)
	if err != nil {
		return mapErr(err)
	}
	defer cur.Close(ctx)

	return mapErr(cur.All(ctx, out))
}

func (s *Store) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, toBSON(filter))
	return n, mapErr(err)
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	_, err = coll.InsertOne(ctx, doc)
	return mapErr(err)
}

func (s *Store) Replace(ctx context.Context, collection string, doc store.Document) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": doc.DocumentID()}, doc)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNoDocument
	}
	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context, collection string, indexes []store.Index) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	return mapErr(createIndexes(ctx, coll, indexes))
}

func (s *Store) Ping(ctx context.Context) error {
	client, err := s.conn.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	return mapErr(client.Ping(ctx, nil))
}

func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close(func(c *mongo.Client) error {
		return c.Disconnect(ctx)
	})
}

func createIndexes(ctx context.Context, coll *mongo.Collection, indexes []store.Index) error {
	if len(indexes) == 0 {
		return nil
	}

	models := make([]mongo.IndexModel, 0, len(indexes))

	for _, idx := range indexes {
		keys := bson.D{}
		for _, f := range idx.Fields {
			keys = append(keys, bson.E{Key: fieldName(f), Value: 1})
		}

		opts := options.Index().SetName(idx.Name)
		if idx.Unique {
			opts.SetUnique(true)
		}

		models = append(models, mongo.IndexModel{Keys: keys, Options: opts})
	}

	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func fieldName(f string) string {
	if f == store.IDField {
		return "_id"
	}
	return f
}

func toBSON(filter store.Filter) bson.M {
	out := bson.M{}

	for _, c := range filter {
		key := fieldName(c.Field)

		ops, ok := out[key].(bson.M)
		if !ok {
			ops = bson.M{}
			out[key] = ops
		}

		switch c.Op {
		case store.OpEq:
			ops["$eq"] = c.Value
		case store.OpNe:
			ops["$ne"] = c.Value
		case store.OpAnyOf:
			ops["$in"] = c.Value
		}
	}

	return out
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNoDocument
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", store.ErrDuplicateKey, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	default:
		return err
	}
}
