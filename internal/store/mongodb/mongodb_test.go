package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/devevents/internal/store"
	"github.com/geocoder89/devevents/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestToBSON(t *testing.T) {
	got := toBSON(store.Where(
		store.Eq("slug", "go-conf"),
		store.Ne(store.IDField, "abc"),
		store.AnyOf("tags", []string{"go"}),
	))

	assert.Equal(t, bson.M{
		"slug": bson.M{"$eq": "go-conf"},
		"_id":  bson.M{"$ne": "abc"},
		"tags": bson.M{"$in": []string{"go"}},
	}, got)

	assert.Equal(t, bson.M{}, toBSON(nil))
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(mongo.ErrNoDocuments), store.ErrNoDocument)
	assert.ErrorIs(t, mapErr(fmt.Errorf("lookup: %w", mongo.ErrClientDisconnected)), store.ErrUnavailable)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	err := mapErr(dup)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	var we mongo.WriteException
	require.True(t, errors.As(err, &we))
	assert.Equal(t, 11000, we.WriteErrors[0].Code)

	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))
}

func TestStore_Conformance(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	database := "devevents_test_" + uuid.NewString()[:8]
	s := New(Config{URI: uri, Database: database, DialTimeout: 10 * time.Second}, storetest.Schema("docs"))

	t.Cleanup(func() {
		ctx := context.Background()
		if client, ok := s.conn.Peek(); ok {
			_ = client.Database(database).Drop(ctx)
		}
		_ = s.Close(ctx)
	})

	storetest.Run(t, s, "docs")
}
