package analytics

import (
	"net/url"
	"strings"
)

// NormalizeReferrer reduces a referrer URL to its host, lower-cased and
// without a leading "www.". Strings that are not absolute URLs are kept
// as given (trimmed), so callers may pass labels like "newsletter".
func NormalizeReferrer(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ref
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
