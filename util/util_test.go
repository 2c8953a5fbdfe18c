package util

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUrl(t *testing.T) {
	assert.Equal(t, "https://example.org/d/abc", MakeUrl("https://example.org/", "/d/", "abc"))
	assert.Equal(t, "https://example.org/d/abc", MakeUrl("https://example.org", "d", "abc"))
	assert.Equal(t, "https://example.org/d/abc", ShareUrl("https://example.org", "abc"))
}

func TestLogSafeUrl(t *testing.T) {
	u := LogSafeUrl("https://bucket.example.org/transfers/x/a.zip?X-Amz-Signature=secret&X-Amz-Expires=900")
	assert.NotContains(t, u, "secret")
	assert.Contains(t, u, "X-Amz-Expires=900")

	r := httptest.NewRequest("PUT", "/_storage/transfers/x/a.zip?signature=abc&expires=1", nil)
	assert.NotContains(t, GetLogSafeUrl(r), "abc")
}

func TestAttachmentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="report.pdf"`, AttachmentDisposition("report.pdf"))
	d := AttachmentDisposition("résumé.pdf")
	assert.True(t, strings.HasPrefix(d, "attachment; filename*=utf-8''"), d)
	assert.Equal(t, "attachment", AttachmentDisposition(""))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/zip", ContentTypeForName("bundle.zip"))
	assert.Equal(t, "application/zip", DetectContentType("bundle.ZIP", nil))
	assert.Equal(t, "image/png", DetectContentType("noext", strings.NewReader("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")))
	assert.Equal(t, "application/octet-stream", DetectContentType("noext", nil))
}

func TestPanicToError(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, boom, PanicToError(boom))
	assert.EqualError(t, PanicToError("text"), "text")
	assert.EqualError(t, PanicToError(42), "unknown panic")
}
