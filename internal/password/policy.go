package password

import (
	_ "embed"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

// MinLength is the minimum accepted password length in runes.
const MinLength = 8

// ErrTooShort is returned for candidates shorter than MinLength.
var ErrTooShort = errors.New("password is shorter than 8 characters")

// ErrTooCommon is returned for candidates found in the common-password
// corpus.  The check runs before hashing and before any store access.
var ErrTooCommon = errors.New("password is too common")

//go:embed common_passwords.txt
var commonCorpus string

var (
	commonOnce sync.Once
	commonSet  map[string]struct{}
)

func loadCommon() {
	lines := strings.Split(commonCorpus, "\n")
	commonSet = make(map[string]struct{}, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		commonSet[strings.ToLower(l)] = struct{}{}
	}
}

// IsCommon reports whether the candidate appears in the embedded
// corpus.  Matching is case-insensitive.
func IsCommon(candidate string) bool {
	commonOnce.Do(loadCommon)
	_, ok := commonSet[strings.ToLower(candidate)]
	return ok
}

// Validate applies the signup password policy to a candidate.  It
// returns nil when the candidate is acceptable, ErrTooShort or
// ErrTooCommon otherwise.
func Validate(candidate string) error {
	if utf8.RuneCountInString(candidate) < MinLength {
		return ErrTooShort
	}
	if IsCommon(candidate) {
		return ErrTooCommon
	}
	return nil
}
