// Package variant picks among alternatives deterministically, so the same
// course renders the same wording and imagery on every run and machine.
package variant

import "github.com/cespare/xxhash/v2"

// Index maps seed onto [0, n). It returns 0 when n <= 0.
func Index(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(xxhash.Sum64String(seed) % uint64(n))
}

// Pick returns the option selected by seed, or "" when there are none.
func Pick(seed string, options ...string) string {
	if len(options) == 0 {
		return ""
	}
	return options[Index(seed, len(options))]
}
