package metadata

import (
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/datastores"
	"github.com/t2bot/transfer-repo/internal_cache"
	"github.com/t2bot/transfer-repo/types"
)

func newTestStore() (*Store, datastores.Datastore, rcontext.RequestContext) {
	cfg := config.NewDefaultConfig()
	ds := datastores.NewLocalDatastore(memfs.New(), "key", "http://localhost")
	return NewStore(ds, internal_cache.NewMemoryCache(cfg.Cache)), ds, rcontext.Initial(cfg)
}

func TestPutThenGet(t *testing.T) {
	store, _, ctx := newTestStore()
	created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	in := &types.Transfer{
		Id:          "AbCdEf12",
		Filename:    "holiday_20240501_1030.zip",
		SizeBytes:   1234,
		ContentType: "application/zip",
		Sender:      types.EmailSender("ann@example.org"),
		CreatedAt:   created,
	}
	require.NoError(t, store.Put(ctx, in.Id, in))

	out, err := store.Get(ctx, in.Id)
	require.NoError(t, err)
	assert.Equal(t, in.Id, out.Id)
	assert.Equal(t, in.Filename, out.Filename)
	assert.Equal(t, in.SizeBytes, out.SizeBytes)
	assert.Equal(t, in.ContentType, out.ContentType)
	assert.True(t, created.Equal(out.CreatedAt))
	email, ok := out.Sender.Email()
	assert.True(t, ok)
	assert.Equal(t, "ann@example.org", email)
}

func TestGetUnknown(t *testing.T) {
	store, _, ctx := newTestStore()
	_, err := store.Get(ctx, "nothere1")
	assert.ErrorIs(t, err, common.ErrTransferNotFound)
}

func TestPutRejectsMismatchedId(t *testing.T) {
	store, _, ctx := newTestStore()
	err := store.Put(ctx, "aaaaaaaa", &types.Transfer{Id: "bbbbbbbb"})
	assert.Error(t, err)
}

func TestGetLegacyDocument(t *testing.T) {
	store, ds, ctx := newTestStore()
	legacy := `{"filename":"a.txt","size":3,"email":"bob@example.org","createdAt":"2024-01-02T03:04:05Z"}`
	require.NoError(t, ds.PutObject(ctx, types.MetadataKey("legacy01"), strings.NewReader(legacy), int64(len(legacy)), ContentType))

	out, err := store.Get(ctx, "legacy01")
	require.NoError(t, err)
	assert.Equal(t, "legacy01", out.Id)
	assert.Equal(t, types.DefaultContentType, out.ContentType)
	email, ok := out.Sender.Email()
	assert.True(t, ok)
	assert.Equal(t, "bob@example.org", email)
}

func TestGetCorruptDocument(t *testing.T) {
	store, ds, ctx := newTestStore()
	require.NoError(t, ds.PutObject(ctx, types.MetadataKey("corrupt1"), strings.NewReader("{"), 1, ContentType))
	_, err := store.Get(ctx, "corrupt1")
	assert.True(t, common.IsStorageError(err))
}
