package readers

import (
	"bytes"
	"io"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/transfer-repo/common"
)

func TestLimitReaderWithOverrunError(t *testing.T) {
	r := LimitReaderWithOverrunError(io.NopCloser(strings.NewReader("hello world")), 5)
	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, common.ErrTransferTooLarge)

	r = LimitReaderWithOverrunError(io.NopCloser(strings.NewReader("hello")), 5)
	b, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestProgressReaderMonotonicEndsAt100(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)
	reports := make([]int, 0)
	r := NewProgressReader(bytes.NewReader(data), int64(len(data)), func(p int) {
		reports = append(reports, p)
	})

	buf := make([]byte, 7)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	require.NotEmpty(t, reports)
	for i := 1; i < len(reports); i++ {
		assert.Greater(t, reports[i], reports[i-1])
	}
	assert.Equal(t, 100, reports[len(reports)-1])
}

func TestProgressReaderCompleteOnce(t *testing.T) {
	count := 0
	r := NewProgressReader(strings.NewReader("ab"), 2, func(p int) {
		if p == 100 {
			count++
		}
	})
	_, _ = io.ReadAll(r)
	r.Complete()
	assert.Equal(t, 1, count)
}

func TestProgressReaderHolds100UntilDone(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)
	reports := make([]int, 0)
	r := NewProgressReader(bytes.NewReader(data), int64(len(data)), func(p int) {
		reports = append(reports, p)
	})

	// the whole body, without the read that observes EOF
	buf := make([]byte, 1000)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1000, n)
	assert.Equal(t, 99, reports[len(reports)-1])

	r.Complete()
	assert.Equal(t, 100, reports[len(reports)-1])
}

func TestUploadProgressReaderWaitsForComplete(t *testing.T) {
	reports := make([]int, 0)
	r := NewUploadProgressReader(strings.NewReader("abcd"), 4, func(p int) {
		reports = append(reports, p)
	})
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []int{99}, reports)

	r.Complete()
	assert.Equal(t, []int{99, 100}, reports)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 1000))
	assert.Equal(t, 50, Percent(500, 1000))
	assert.Equal(t, 0, Percent(5, 1000))
	assert.Equal(t, 99, Percent(999, 1000))
	assert.Equal(t, 100, Percent(1200, 1000))
	assert.Equal(t, 100, Percent(0, 0))
}

func TestTempFileCloserRemovesFile(t *testing.T) {
	fname := path.Join(t.TempDir(), "bundle.zip")
	require.NoError(t, os.WriteFile(fname, []byte("zip"), 0600))
	f, err := os.Open(fname)
	require.NoError(t, err)

	c := NewTempFileCloser(fname, f)
	b, err := io.ReadAll(c)
	require.NoError(t, err)
	assert.Equal(t, "zip", string(b))
	require.NoError(t, c.Close())
	assert.NoFileExists(t, fname)
	assert.NoError(t, c.Close())
}
