package caption

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"threadscraper/pkg/browser"
)

// DefaultNoiseWords are interface labels that show up next to captions
var DefaultNoiseWords = []string{
	"like", "reply", "repost", "share", "follow", "translate", "more",
	"see more", "followers", "following", "posts", "views", "comments",
}

// maxNoiseLineLen is the longest line still dropped for containing a noise word
const maxNoiseLineLen = 14

// Picker chooses the caption line out of a block of post text
type Picker struct {
	noise []string
}

// NewPicker creates a Picker with the given noise lexicon; nil means DefaultNoiseWords
func NewPicker(noise []string) *Picker {
	if noise == nil {
		noise = DefaultNoiseWords
	}
	lowered := make([]string, len(noise))
	for i, w := range noise {
		lowered[i] = strings.ToLower(w)
	}
	return &Picker{noise: lowered}
}

var defaultPicker = NewPicker(nil)

// PickCaption returns the longest line of block that is not a short UI label,
// a count, or a relative timestamp. It returns "" when nothing qualifies.
func PickCaption(block string) string {
	return defaultPicker.Pick(block)
}

// Pick is PickCaption with this picker's lexicon
func (p *Picker) Pick(block string) string {
	best, bestLen := "", 0
	for _, raw := range strings.Split(block, "\n") {
		line := browser.NormalizeSpace(raw)
		if p.discard(line) {
			continue
		}
		// strictly longer only, so the first of equal-length lines wins
		if n := utf8.RuneCountInString(line); n > bestLen {
			best, bestLen = line, n
		}
	}
	return best
}

func (p *Picker) discard(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < 2 {
		return true
	}
	if isDigits(line) {
		return true
	}

	low := strings.ToLower(line)
	if n <= 3 && isRelativeTime(low) {
		return true
	}
	if n <= maxNoiseLineLen {
		for _, w := range p.noise {
			if strings.Contains(low, w) {
				return true
			}
		}
	}
	return false
}

// isRelativeTime matches tokens such as "2h", "15m" or "3d"
func isRelativeTime(low string) bool {
	last, size := utf8.DecodeLastRuneInString(low)
	if last != 'h' && last != 'm' && last != 'd' {
		return false
	}
	return isDigits(low[:len(low)-size])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
