package datastores

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/metrics"
	"github.com/t2bot/transfer-repo/util"
	"github.com/t2bot/transfer-repo/util/readers"
)

// LocalPathPrefix is where the local driver's signed URLs are served from.
const LocalPathPrefix = "/_storage/"

var errSizeMismatch = errors.New("object size mismatch")

// LocalDatastore keeps objects on a go-billy filesystem and serves its own HMAC-signed URLs.
// It exists so the whole transfer protocol can run without a cloud bucket.
type LocalDatastore struct {
	fs           billy.Filesystem
	signingKey   []byte
	publicOrigin string
	maxBytes     int64
	contentTypes *sync.Map
	now          func() time.Time
}

func newLocalDatastore(conf config.StorageConfig, publicOrigin string) (*LocalDatastore, error) {
	if conf.LocalSigningKey == "" {
		return nil, errors.New("local datastore requires a signing key")
	}
	var fs billy.Filesystem
	if conf.LocalPath == "" {
		logrus.Warn("Local datastore has no path: transfers are kept in memory and lost on restart")
		fs = memfs.New()
	} else {
		if err := os.MkdirAll(conf.LocalPath, 0755); err != nil {
			return nil, err
		}
		fs = osfs.New(conf.LocalPath, osfs.WithBoundOS())
	}
	return NewLocalDatastore(fs, conf.LocalSigningKey, publicOrigin), nil
}

func NewLocalDatastore(fs billy.Filesystem, signingKey string, publicOrigin string) *LocalDatastore {
	return &LocalDatastore{
		fs:           fs,
		signingKey:   []byte(signingKey),
		publicOrigin: strings.TrimRight(publicOrigin, "/"),
		maxBytes:     config.MaxTransferSizeBytes,
		contentTypes: &sync.Map{},
		now:          time.Now,
	}
}

func (s *LocalDatastore) Driver() string {
	return DriverLocal
}

func (s *LocalDatastore) countOp(op string) {
	metrics.S3Operations.With(prometheus.Labels{"driver": DriverLocal, "operation": op}).Inc()
}

func (s *LocalDatastore) PutObject(ctx rcontext.RequestContext, key string, data io.Reader, size int64, contentType string) error {
	s.countOp("PutObject")
	if !isSafeKey(key) {
		return storageError("put", key, errors.New("invalid key"))
	}
	if err := s.write(key, data, size); err != nil {
		return storageError("put", key, err)
	}
	s.contentTypes.Store(key, contentType)
	return nil
}

// write stores the object under key once exactly size bytes have been copied. A negative size
// accepts any length. The previous object is left in place on failure.
func (s *LocalDatastore) write(key string, data io.Reader, size int64) error {
	dir := path.Dir(key)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	// readers never observe a partially written object
	partial := key + ".partial"
	tmp, err := s.fs.Create(partial)
	if err != nil {
		return err
	}
	written, err := io.Copy(tmp, data)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && size >= 0 && written != size {
		err = fmt.Errorf("%w: expected %d got %d", errSizeMismatch, size, written)
	}
	if err != nil {
		_ = s.fs.Remove(partial)
		return err
	}
	return s.fs.Rename(partial, key)
}

func (s *LocalDatastore) GetObject(ctx rcontext.RequestContext, key string) (io.ReadCloser, error) {
	s.countOp("GetObject")
	if !isSafeKey(key) {
		return nil, common.ErrObjectNotFound
	}
	f, err := s.fs.Open(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrObjectNotFound
		}
		return nil, storageError("get", key, err)
	}
	return f, nil
}

func (s *LocalDatastore) StatObject(ctx rcontext.RequestContext, key string) (*ObjectInfo, error) {
	s.countOp("StatObject")
	if !isSafeKey(key) {
		return nil, common.ErrObjectNotFound
	}
	info, err := s.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrObjectNotFound
		}
		return nil, storageError("stat", key, err)
	}
	if info.IsDir() {
		return nil, common.ErrObjectNotFound
	}
	return &ObjectInfo{
		Key:         key,
		SizeBytes:   info.Size(),
		ContentType: s.contentTypeOf(key),
	}, nil
}

func (s *LocalDatastore) contentTypeOf(key string) string {
	if v, ok := s.contentTypes.Load(key); ok {
		return v.(string)
	}
	if ct := util.ContentTypeForName(key); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *LocalDatastore) PresignUpload(ctx rcontext.RequestContext, key string, contentType string, contentLength int64, ttl time.Duration) (string, error) {
	s.countOp("PresignPutObject")
	qs := url.Values{}
	qs.Set("ct", contentType)
	qs.Set("cl", strconv.FormatInt(contentLength, 10))
	return s.signedUrl(http.MethodPut, key, ttl, qs)
}

func (s *LocalDatastore) PresignDownload(ctx rcontext.RequestContext, key string, ttl time.Duration, downloadFilename string) (string, error) {
	s.countOp("PresignGetObject")
	qs := url.Values{}
	qs.Set("rcd", util.AttachmentDisposition(downloadFilename))
	return s.signedUrl(http.MethodGet, key, ttl, qs)
}

// signedParams are the query values bound into the signature, per method: the upload content
// type and length, or the download disposition.
var signedParams = map[string][]string{
	http.MethodPut: {"ct", "cl"},
	http.MethodGet: {"rcd"},
}

func signedValues(method string, qs url.Values) string {
	values := make([]string, 0, len(signedParams[method]))
	for _, name := range signedParams[method] {
		values = append(values, qs.Get(name))
	}
	return strings.Join(values, "\n")
}

func (s *LocalDatastore) signedUrl(method string, key string, ttl time.Duration, qs url.Values) (string, error) {
	if !isSafeKey(key) {
		return "", storageError("presign", key, errors.New("invalid key"))
	}
	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)
	qs.Set("expires", expires)
	qs.Set("signature", s.sign(method, key, expires, signedValues(method, qs)))
	return s.publicOrigin + LocalPathPrefix + escapeKey(key) + "?" + qs.Encode(), nil
}

func (s *LocalDatastore) sign(method string, key string, expires string, extra string) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(method + "\n" + key + "\n" + expires + "\n" + extra))
	return hex.EncodeToString(mac.Sum(nil))
}

// ServeHTTP serves the signed URLs issued by PresignUpload and PresignDownload.
func (s *LocalDatastore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, LocalPathPrefix)
	if !isSafeKey(key) {
		http.Error(w, "invalid key", http.StatusBadRequest)
		return
	}

	method := r.Method
	if method == http.MethodHead {
		method = http.MethodGet
	}
	if _, ok := signedParams[method]; !ok {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	qs := r.URL.Query()

	expires := qs.Get("expires")
	expiresTs, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > expiresTs {
		http.Error(w, "request has expired", http.StatusForbidden)
		return
	}
	expected := s.sign(method, key, expires, signedValues(method, qs))
	if !hmac.Equal([]byte(expected), []byte(qs.Get("signature"))) {
		http.Error(w, "signature does not match", http.StatusForbidden)
		return
	}

	if method == http.MethodPut {
		s.servePut(w, r, key, qs.Get("ct"), qs.Get("cl"))
	} else {
		s.serveGet(w, r, key, qs.Get("rcd"))
	}
}

func (s *LocalDatastore) servePut(w http.ResponseWriter, r *http.Request, key string, contentType string, signedLength string) {
	if r.Header.Get("Content-Type") != contentType {
		http.Error(w, "content type does not match signature", http.StatusForbidden)
		return
	}
	contentLength, err := strconv.ParseInt(signedLength, 10, 64)
	if err != nil || contentLength < 0 || contentLength > s.maxBytes {
		http.Error(w, "invalid content length", http.StatusBadRequest)
		return
	}
	if r.ContentLength != contentLength {
		http.Error(w, "content length does not match signature", http.StatusForbidden)
		return
	}
	s.countOp("SignedPut")
	body := readers.LimitReaderWithOverrunError(r.Body, contentLength)
	defer body.Close()
	if err = s.write(key, body, contentLength); err != nil {
		switch {
		case errors.Is(err, common.ErrTransferTooLarge):
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, errSizeMismatch), errors.Is(err, io.ErrUnexpectedEOF):
			http.Error(w, "body does not match content length", http.StatusBadRequest)
		default:
			logrus.WithField("key", key).Error("Error storing signed upload: ", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	s.contentTypes.Store(key, contentType)
	w.WriteHeader(http.StatusOK)
}

func (s *LocalDatastore) serveGet(w http.ResponseWriter, r *http.Request, key string, disposition string) {
	s.countOp("SignedGet")
	f, err := s.fs.Open(key)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no such key", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := s.fs.Stat(key)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.contentTypeOf(key))
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	http.ServeContent(w, r, "", info.ModTime(), f)
}

func isSafeKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
