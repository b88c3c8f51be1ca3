// Package conditional decides whether a read request can be answered with
// 304 Not Modified instead of re-transferring the order body. The version
// token exposed to clients is the decimal form of the order's revision
// number, wrapped in quotes as an entity tag.
package conditional

import (
	"strconv"
	"strings"
)

// ETag returns the entity tag for an order revision: the decimal version
// wrapped in quotes.
func ETag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// NotModified reports whether the client-supplied If-None-Match value names
// the current revision. An absent or malformed value never matches, so the
// request falls back to a full response rather than failing.
func NotModified(version int64, header string) bool {
	if header == "" {
		return false
	}

	token := strings.TrimSpace(header)
	token = strings.TrimPrefix(token, "W/")
	token = strings.Trim(token, `"`)

	known, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return false
	}

	return known == version
}
