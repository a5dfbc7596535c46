package normalize

import "strings"

// profaneWords is a small, conservative block list for the title
// profanity gate. No profanity-detection library appears anywhere in
// the dependency corpus this pipeline is grounded on, so this gate is a
// direct, minimal port of the wordlist-substring approach the original
// pipeline used rather than a fabricated dependency.
var profaneWords = []string{
	"fuck", "shit", "bitch", "asshole", "bastard", "cunt", "dick", "piss",
}

// ContainsProfanity reports whether title contains any blocked word, as
// a case-insensitive substring match.
func ContainsProfanity(title string) bool {
	lower := strings.ToLower(title)
	for _, word := range profaneWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
