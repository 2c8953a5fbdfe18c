package util

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// AttachmentDisposition builds a Content-Disposition value which makes browsers save the
// download under the given name. Non-ASCII names are carried in the RFC 5987 filename* form.
func AttachmentDisposition(filename string) string {
	if filename == "" {
		return "attachment"
	}
	if isPlainAscii(filename) {
		return fmt.Sprintf("attachment; filename=\"%s\"", filename)
	}
	return fmt.Sprintf("attachment; filename*=utf-8''%s", url.PathEscape(filename))
}

func isPlainAscii(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || r == '"' || r == '\\' {
			return false
		}
	}
	return !strings.ContainsAny(s, "\r\n")
}
