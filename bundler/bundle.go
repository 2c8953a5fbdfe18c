package bundler

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/util"
	"github.com/t2bot/transfer-repo/util/readers"
)

var ErrEmptySelection = errors.New("nothing was selected to send")

const zipContentType = "application/zip"

// Selection is what the sender picked: loose files plus whole directories, as paths within a
// filesystem.
type Selection struct {
	Files []string
	Dirs  []string
}

type Options struct {
	// Label names the artifact, usually the sender's name or address.
	Label string

	// ForceZip archives even a single file.
	ForceZip bool

	// TempDir holds the archive while it is uploaded. Defaults to os.TempDir().
	TempDir string

	Now     func() time.Time
	OpenDir OpenDirFunc
}

// Bundle is the single artifact produced from a selection. Close releases any temporary data.
type Bundle struct {
	Filename    string
	ContentType string
	SizeBytes   int64
	Entries     []Entry
	Zipped      bool

	data io.ReadSeekCloser
}

// Reader returns the artifact positioned at its first byte.
func (b *Bundle) Reader() (io.ReadSeeker, error) {
	if _, err := b.data.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return b.data, nil
}

func (b *Bundle) Close() error {
	if b.data == nil {
		return nil
	}
	return b.data.Close()
}

// Build turns a selection into one uploadable artifact. A lone file is passed through untouched;
// anything else becomes a zip archive.
func Build(ctx context.Context, fs billy.Filesystem, sel Selection, opts Options) (*Bundle, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OpenDir == nil {
		opts.OpenDir = NewDirReader
	}
	at := opts.Now()

	entries, err := collect(ctx, fs, sel, opts.OpenDir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptySelection
	}

	if len(sel.Files) == 1 && len(sel.Dirs) == 0 && !opts.ForceZip {
		return passThrough(fs, sel.Files[0], entries, opts.Label, at)
	}
	return archive(ctx, entries, opts, at)
}

func collect(ctx context.Context, fs billy.Filesystem, sel Selection, openDir OpenDirFunc) ([]Entry, error) {
	entries := make([]Entry, 0, len(sel.Files))
	for _, f := range sel.Files {
		info, err := fs.Stat(f)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, errors.New(f + " is a directory")
		}
		entries = append(entries, fileEntry(fs, f, path.Base(f), info.Size()))
	}
	for _, d := range sel.Dirs {
		dirEntries, err := Traverse(ctx, fs, d, openDir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, dirEntries...)
	}
	return entries, nil
}

func passThrough(fs billy.Filesystem, file string, entries []Entry, label string, at time.Time) (*Bundle, error) {
	f, err := fs.Open(file)
	if err != nil {
		return nil, err
	}
	contentType := util.DetectContentType(path.Base(file), f)
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Bundle{
		Filename:    ArtifactName(label, at, extensionOf(file)),
		ContentType: contentType,
		SizeBytes:   entries[0].Size,
		Entries:     entries,
		data:        f,
	}, nil
}

func archive(ctx context.Context, entries []Entry, opts Options, at time.Time) (*Bundle, error) {
	tempFile, err := os.CreateTemp(opts.TempDir, "transfer-*.zip")
	if err != nil {
		return nil, err
	}
	data := readers.NewTempFileCloser(tempFile.Name(), tempFile)

	size, err := writeZip(ctx, tempFile, entries, at)
	if err != nil {
		if cerr := data.Close(); cerr != nil {
			logrus.Warn("Error removing partial archive: ", cerr)
		}
		return nil, err
	}

	return &Bundle{
		Filename:    ArtifactName(opts.Label, at, ".zip"),
		ContentType: zipContentType,
		SizeBytes:   size,
		Entries:     entries,
		Zipped:      true,
		data:        data,
	}, nil
}

func writeZip(ctx context.Context, f *os.File, entries []Entry, at time.Time) (int64, error) {
	zw := zip.NewWriter(f)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Path,
			Method:   zip.Deflate,
			Modified: at,
		})
		if err != nil {
			return 0, err
		}
		if err = copyEntry(w, entry); err != nil {
			return 0, err
		}
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func copyEntry(w io.Writer, entry Entry) error {
	r, err := entry.Content()
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}
