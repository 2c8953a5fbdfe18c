package datastores

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
)

func newTestLocal(t *testing.T) (*LocalDatastore, *httptest.Server) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ds := NewLocalDatastore(memfs.New(), "test-signing-key", srv.URL)
	mux.Handle(LocalPathPrefix, ds)
	return ds, srv
}

func testCtx() rcontext.RequestContext {
	return rcontext.Initial(config.NewDefaultConfig())
}

func TestLocalSignedRoundTrip(t *testing.T) {
	ds, _ := newTestLocal(t)
	ctx := testCtx()
	key := "transfers/AAAAAAAA/report.pdf"

	uploadUrl, err := ds.PresignUpload(ctx, key, "application/pdf", 5, 15*time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, uploadUrl, strings.NewReader("%PDF-"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/pdf")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	info, err := ds.StatObject(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.SizeBytes)
	assert.Equal(t, "application/pdf", info.ContentType)

	downloadUrl, err := ds.PresignDownload(ctx, key, time.Hour, "report.pdf")
	require.NoError(t, err)
	res, err = http.Get(downloadUrl)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `attachment; filename="report.pdf"`, res.Header.Get("Content-Disposition"))
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(b))
}

func TestLocalRejectsWrongContentType(t *testing.T) {
	ds, _ := newTestLocal(t)
	uploadUrl, err := ds.PresignUpload(testCtx(), "transfers/x/a.zip", "application/zip", 3, time.Minute)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPut, uploadUrl, strings.NewReader("abc"))
	req.Header.Set("Content-Type", "text/plain")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestLocalRejectsWrongContentLength(t *testing.T) {
	ds, _ := newTestLocal(t)
	ctx := testCtx()
	key := "transfers/x/a.bin"
	uploadUrl, err := ds.PresignUpload(ctx, key, "application/octet-stream", 5, time.Minute)
	require.NoError(t, err)

	for _, body := range []string{"abc", "abcdefgh", ""} {
		req, _ := http.NewRequest(http.MethodPut, uploadUrl, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/octet-stream")
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = res.Body.Close()
		assert.Equal(t, http.StatusForbidden, res.StatusCode, "body %q", body)
	}
	_, err = ds.StatObject(ctx, key)
	assert.ErrorIs(t, err, common.ErrObjectNotFound)

	// the signed length cannot be rewritten to fit a shorter body
	req, _ := http.NewRequest(http.MethodPut, strings.Replace(uploadUrl, "cl=5", "cl=3", 1), strings.NewReader("abc"))
	req.Header.Set("Content-Type", "application/octet-stream")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	req, _ = http.NewRequest(http.MethodPut, uploadUrl, strings.NewReader("abcde"))
	req.Header.Set("Content-Type", "application/octet-stream")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLocalRejectsExpiredAndTampered(t *testing.T) {
	ds, _ := newTestLocal(t)
	ctx := testCtx()
	require.NoError(t, ds.PutObject(ctx, "transfers/x/a.txt", strings.NewReader("hi"), 2, "text/plain"))

	u, err := ds.PresignDownload(ctx, "transfers/x/a.txt", time.Minute, "a.txt")
	require.NoError(t, err)

	// tampering with the key invalidates the signature
	res, err := http.Get(strings.Replace(u, "a.txt?", "b.txt?", 1))
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	ds.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	res, err = http.Get(u)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestLocalMissingObject(t *testing.T) {
	ds, _ := newTestLocal(t)
	ctx := testCtx()

	_, err := ds.GetObject(ctx, "transfers/nope/meta.json")
	assert.ErrorIs(t, err, common.ErrObjectNotFound)
	_, err = ds.StatObject(ctx, "transfers/nope/meta.json")
	assert.ErrorIs(t, err, common.ErrObjectNotFound)
}

func TestLocalPutGet(t *testing.T) {
	ds, _ := newTestLocal(t)
	ctx := testCtx()
	require.NoError(t, ds.PutObject(ctx, "transfers/x/meta.json", bytes.NewReader([]byte(`{}`)), 2, "application/json"))

	r, err := ds.GetObject(ctx, "transfers/x/meta.json")
	require.NoError(t, err)
	defer r.Close()
	b, _ := io.ReadAll(r)
	assert.Equal(t, "{}", string(b))

	err = ds.PutObject(ctx, "transfers/x/meta.json", bytes.NewReader([]byte(`{"a":1}`)), 10, "application/json")
	assert.True(t, common.IsStorageError(err))

	// a failed write leaves the previous object alone
	r, err = ds.GetObject(ctx, "transfers/x/meta.json")
	require.NoError(t, err)
	defer r.Close()
	b, _ = io.ReadAll(r)
	assert.Equal(t, "{}", string(b))
}

func TestIsSafeKey(t *testing.T) {
	assert.True(t, isSafeKey("transfers/abc/file.zip"))
	assert.False(t, isSafeKey("../etc/passwd"))
	assert.False(t, isSafeKey("transfers//x"))
	assert.False(t, isSafeKey("/abs"))
	assert.False(t, isSafeKey(""))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(config.StorageConfig{Driver: "ftp"}, "")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
