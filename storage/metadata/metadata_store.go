package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	pkgerrors "github.com/pkg/errors"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/datastores"
	"github.com/t2bot/transfer-repo/internal_cache"
	"github.com/t2bot/transfer-repo/types"
)

const ContentType = "application/json"

// maxDescriptorBytes bounds how much of a meta.json is read back.
const maxDescriptorBytes = 64 * 1024

// Store persists transfer descriptors as JSON documents next to the artifact they describe.
type Store struct {
	ds    datastores.Datastore
	cache internal_cache.DescriptorCache
}

func NewStore(ds datastores.Datastore, cache internal_cache.DescriptorCache) *Store {
	if cache == nil {
		cache = internal_cache.NewNoopCache()
	}
	return &Store{ds: ds, cache: cache}
}

func (s *Store) Put(ctx rcontext.RequestContext, id string, transfer *types.Transfer) error {
	if transfer.Id != id {
		return pkgerrors.Errorf("descriptor id %q does not match %q", transfer.Id, id)
	}
	b, err := json.Marshal(transfer)
	if err != nil {
		return pkgerrors.Wrap(err, "error encoding descriptor")
	}
	if err = s.ds.PutObject(ctx, types.MetadataKey(id), bytes.NewReader(b), int64(len(b)), ContentType); err != nil {
		return err
	}
	ctx.Log.WithField("transferId", id).Debug("Stored descriptor")
	return nil
}

// Get returns common.ErrTransferNotFound when no descriptor exists for the id.
func (s *Store) Get(ctx rcontext.RequestContext, id string) (*types.Transfer, error) {
	key := types.MetadataKey(id)
	b, err := s.cache.GetDescriptor(ctx, id, func() ([]byte, error) {
		r, err := s.ds.GetObject(ctx, key)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		b, err := io.ReadAll(io.LimitReader(r, maxDescriptorBytes))
		if err != nil {
			return nil, common.NewStorageError("read", key, err)
		}
		return b, nil
	})
	if err != nil {
		if errors.Is(err, common.ErrObjectNotFound) {
			return nil, common.ErrTransferNotFound
		}
		return nil, err
	}

	transfer := &types.Transfer{}
	if err = json.Unmarshal(b, transfer); err != nil {
		return nil, common.NewStorageError("decode", key, err)
	}
	if transfer.Id == "" {
		transfer.Id = id
	}
	return transfer, nil
}
