package util

import (
	"net/http"
	"net/url"
	"strings"
)

// Query parameters which carry credentials in presigned URLs.
var sensitiveQueryParams = []string{
	"x-amz-signature",
	"x-amz-credential",
	"x-amz-security-token",
	"signature",
}

func GetLogSafeQueryString(r *http.Request) string {
	return redactQuery(r.URL.Query()).Encode()
}

func GetLogSafeUrl(r *http.Request) string {
	copyUrl, err := url.ParseRequestURI(r.URL.String())
	if err != nil {
		return r.URL.Path
	}
	copyUrl.RawQuery = GetLogSafeQueryString(r)
	return copyUrl.String()
}

// LogSafeUrl strips signing material from an absolute URL, such as a presigned upload URL.
func LogSafeUrl(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	u.RawQuery = redactQuery(u.Query()).Encode()
	return u.String()
}

func redactQuery(qs url.Values) url.Values {
	for k := range qs {
		for _, s := range sensitiveQueryParams {
			if strings.ToLower(k) == s {
				qs.Set(k, "redacted")
			}
		}
	}
	return qs
}

// IsSuccessStatus reports whether a response status is in the 2xx range.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}
