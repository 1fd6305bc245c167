package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/recordstore"
)

func TestStore_DialectRoundtrip(t *testing.T) {
	store, server := NewServer()
	defer server.Close()

	client := recordstore.NewClient(server.URL)
	ctx := context.Background()

	// Absent collection answers null, which the client maps to empty.
	records, err := client.List(ctx, "books")
	require.NoError(t, err)
	assert.Empty(t, records)

	key, err := client.Create(ctx, "books", map[string]any{"title": "Dune", "status": "library"})
	require.NoError(t, err)
	require.NotEmpty(t, key)
	assert.Equal(t, 1, store.Count("books"))

	// PATCH merges only the named fields.
	err = client.Patch(ctx, "books", key, map[string]any{"status": "reading"})
	require.NoError(t, err)

	var record map[string]any
	require.True(t, store.Record("books", key, &record))
	assert.Equal(t, "Dune", record["title"])
	assert.Equal(t, "reading", record["status"])

	// PUT replaces the whole record.
	err = client.Replace(ctx, "books", key, map[string]any{"title": "Hyperion"})
	require.NoError(t, err)

	record = nil
	require.True(t, store.Record("books", key, &record))
	assert.Equal(t, "Hyperion", record["title"])
	assert.NotContains(t, record, "status")

	err = client.Delete(ctx, "books", key)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count("books"))
}

func TestStore_GetSingleRecord(t *testing.T) {
	store, server := NewServer()
	defer server.Close()

	store.Seed("users", "u1", map[string]string{"username": "frank"})

	client := recordstore.NewClient(server.URL)

	var user map[string]string
	require.NoError(t, client.Get(context.Background(), "users", "u1", &user))
	assert.Equal(t, "frank", user["username"])
}

func TestStore_RejectsPathsWithoutSuffix(t *testing.T) {
	_, server := NewServer()
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/books")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}
