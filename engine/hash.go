package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
)

// HashBytes returns the hex-encoded sha256 digest of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashString returns the hex-encoded sha256 digest of s.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// VisibleText projects HTML to its visible text: script/style contents are
// dropped, tags are stripped, and whitespace collapses to single spaces.
func VisibleText(htmlStr string) string {
	s := scriptBlockRe.ReplaceAllString(htmlStr, " ")
	s = styleBlockRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// HashPricing digests a NormalizedPricing document with object keys sorted
// lexicographically at every nesting level, so field order in the source has
// no effect on the fingerprint.
func HashPricing(p NormalizedPricing) string {
	b, err := json.Marshal(p)
	if err != nil {
		return HashString("null")
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return HashBytes(b)
	}
	canon, err := json.Marshal(generic) // map keys marshal sorted
	if err != nil {
		return HashBytes(b)
	}
	return HashBytes(canon)
}

// HashScreenshot digests captured screenshot bytes, or returns nil when no
// screenshot exists.
func HashScreenshot(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	h := HashBytes(b)
	return &h
}
