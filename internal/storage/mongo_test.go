package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/internal/models"
)

// Runs against an existing server, e.g. MONGO_URI=mongodb://localhost:27017.
func TestMongoBackend_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" || testing.Short() {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()

	b, err := ConnectMongo(ctx, uri, "brandlink_test", "it-"+identity.NewID())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = b.coll.DeleteOne(context.Background(), map[string]string{"_id": b.name})
		_ = b.Close()
	})

	doc, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)

	in := models.NewDocument()
	in.Ratings = append(in.Ratings, models.Rating{ID: "r1", Score: 4})
	require.NoError(t, b.Save(ctx, in))

	out, err := b.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Ratings, 1)
	assert.Equal(t, 4, out.Ratings[0].Score)
}
