package services

import (
	"regexp"
	"strings"
)

// Bracket handling for major names. Job texts and candidate profiles mix
// half-width and full-width brackets, and qualifiers like （师范方向） must not
// defeat a category match.
var (
	bracketPairRe = regexp.MustCompile(`[（）()【】\[\]「」『』].*?[（）()【】\[\]「」『』]`)
	parenPairRe   = regexp.MustCompile(`[(（].*?[)）]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)

	strayBracketReplacer = strings.NewReplacer(
		"（", "", "）", "",
		"(", "", ")", "",
		"【", "", "】", "",
		"[", "", "]", "",
		"「", "", "」", "",
		"『", "", "』", "",
	)
)

// NormalizeMajor canonicalizes a free-text major/field-of-study name for
// comparison: trims, removes bracketed qualifiers across every supported
// bracket style, removes internal whitespace, and strips any stray bracket
// characters left over from unbalanced pairs. Empty input yields an empty
// string. The function is pure and idempotent.
func NormalizeMajor(major string) string {
	if major == "" {
		return ""
	}

	major = strings.TrimSpace(major)
	major = bracketPairRe.ReplaceAllString(major, "")
	major = parenPairRe.ReplaceAllString(major, "")
	major = whitespaceRe.ReplaceAllString(major, "")
	major = strayBracketReplacer.Replace(major)

	return strings.TrimSpace(major)
}
