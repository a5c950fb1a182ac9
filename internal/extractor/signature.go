package extractor

import (
	"math"

	"github.com/cloudflare/ahocorasick"
)

// signatureThreshold is the number of distinct phrases a layout needs to match.
const signatureThreshold = 3

// signatures scores how many issuer phrases occur in a text in a single pass.
type signatures struct {
	matcher *ahocorasick.Matcher
	phrases []string
}

func newSignatures(phrases ...string) signatures {
	return signatures{
		matcher: ahocorasick.NewStringMatcher(phrases),
		phrases: phrases,
	}
}

// count returns the number of distinct phrases present.
func (s signatures) count(text string) int {
	return len(s.matcher.MatchThreadSafe([]byte(text)))
}

// score reports a match at the threshold with confidence rising per phrase.
func (s signatures) score(text string) (bool, float64) {
	matches := s.count(text)
	if matches < signatureThreshold {
		return false, 0
	}
	return true, math.Min(0.95, 0.6+0.1*float64(matches))
}
