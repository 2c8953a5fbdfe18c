package bundler

import (
	"context"
	"io"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentSubdirs = 4

// Entry is one file in a bundle, addressed by its path relative to the selection.
type Entry struct {
	Path    string
	Size    int64
	Content func() (io.ReadCloser, error)
}

func fileEntry(fs billy.Filesystem, fsPath string, entryPath string, size int64) Entry {
	return Entry{
		Path: entryPath,
		Size: size,
		Content: func() (io.ReadCloser, error) {
			return fs.Open(fsPath)
		},
	}
}

// Traverse walks a directory tree and returns every file beneath it. Entry paths start with the
// directory's own name. Each listing is drained fully before its subdirectories are visited, and
// output order is by name at every level regardless of how subdirectories are scheduled.
func Traverse(ctx context.Context, fs billy.Filesystem, dir string, openDir OpenDirFunc) ([]Entry, error) {
	if openDir == nil {
		openDir = NewDirReader
	}
	return traverse(ctx, fs, dir, path.Base(path.Clean(dir)), openDir)
}

func traverse(ctx context.Context, fs billy.Filesystem, dir string, prefix string, openDir OpenDirFunc) ([]Entry, error) {
	listing, err := drain(ctx, openDir(fs, dir))
	if err != nil {
		return nil, err
	}
	sort.Slice(listing, func(i, j int) bool {
		return listing[i].Name() < listing[j].Name()
	})

	slots := make([][]Entry, len(listing))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentSubdirs)
	for i, info := range listing {
		fsPath := path.Join(dir, info.Name())
		entryPath := path.Join(prefix, info.Name())
		if !info.IsDir() {
			if info.Mode()&os.ModeType != 0 {
				continue // symlinks, devices and the like
			}
			slots[i] = []Entry{fileEntry(fs, fsPath, entryPath, info.Size())}
			continue
		}
		group.Go(func() error {
			entries, err := traverse(gctx, fs, fsPath, entryPath, openDir)
			if err != nil {
				return err
			}
			slots[i] = entries
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(listing))
	for _, slot := range slots {
		entries = append(entries, slot...)
	}
	return entries, nil
}

func drain(ctx context.Context, reader DirReader) ([]os.FileInfo, error) {
	all := make([]os.FileInfo, 0)
	for {
		batch, err := reader.ReadEntries(ctx)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return all, nil
		}
		all = append(all, batch...)
	}
}
