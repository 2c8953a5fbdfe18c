package bundler

import (
	"context"
	"os"

	"github.com/go-git/go-billy/v5"
)

const defaultBatchSize = 100

// DirReader pages through a directory listing. An empty batch means the listing is exhausted.
type DirReader interface {
	ReadEntries(ctx context.Context) ([]os.FileInfo, error)
}

// OpenDirFunc creates a reader for one directory. Traversal opens one per directory visited.
type OpenDirFunc func(fs billy.Filesystem, dir string) DirReader

type billyDirReader struct {
	fs        billy.Filesystem
	dir       string
	batchSize int
	listing   []os.FileInfo
	loaded    bool
	pos       int
}

func NewDirReader(fs billy.Filesystem, dir string) DirReader {
	return &billyDirReader{fs: fs, dir: dir, batchSize: defaultBatchSize}
}

func newDirReaderWithBatch(batchSize int) OpenDirFunc {
	return func(fs billy.Filesystem, dir string) DirReader {
		return &billyDirReader{fs: fs, dir: dir, batchSize: batchSize}
	}
}

func (r *billyDirReader) ReadEntries(ctx context.Context) ([]os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.loaded {
		listing, err := r.fs.ReadDir(r.dir)
		if err != nil {
			return nil, err
		}
		r.listing = listing
		r.loaded = true
	}

	if r.pos >= len(r.listing) {
		return nil, nil
	}
	end := r.pos + r.batchSize
	if end > len(r.listing) {
		end = len(r.listing)
	}
	batch := r.listing[r.pos:end]
	r.pos = end
	return batch, nil
}
