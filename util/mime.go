package util

import (
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const fallbackContentType = "application/octet-stream"

// Extensions which the host mime tables commonly lack.
var knownExtensions = map[string]string{
	".zip": "application/zip",
	".tar": "application/x-tar",
	".gz":  "application/gzip",
	".txt": "text/plain",
}

// ContentTypeForName guesses a content type from the file extension alone.
func ContentTypeForName(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		return ""
	}
	ext = strings.ToLower(ext)
	if ct, ok := knownExtensions[ext]; ok {
		return ct
	}
	ct := mime.TypeByExtension(ext)
	return strings.Split(ct, ";")[0]
}

// DetectContentType prefers the extension, then sniffs the stream header.
func DetectContentType(filename string, stream io.Reader) string {
	if ct := ContentTypeForName(filename); ct != "" {
		return ct
	}
	if stream == nil {
		return fallbackContentType
	}

	m, err := mimetype.DetectReader(stream)
	if err != nil || m == nil {
		return fallbackContentType
	}
	return strings.Split(m.String(), ";")[0]
}
