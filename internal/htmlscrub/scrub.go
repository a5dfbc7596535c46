// Package htmlscrub sanitizes the string fields of an output item with
// an HTML allowlist scrubber, the last stage before an item is
// considered safe to publish.
package htmlscrub

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy strips every tag: output fields are plain text (title,
// description), never markup.
var policy = bluemonday.StrictPolicy()

// Scrub sanitizes s with the allowlist policy, then undoes the
// scrubber's over-escaping of "&" so that titles like "Tom & Jerry"
// don't come back as "Tom &amp; Jerry".
func Scrub(s string) string {
	sanitized := policy.Sanitize(s)
	return strings.ReplaceAll(sanitized, "&amp;", "&")
}
