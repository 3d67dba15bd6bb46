// Package match implements literal, case-insensitive phrase matching.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Matcher reports whether a line contains the phrase it was compiled from.
// The phrase is matched as a literal substring with case folding; regex
// metacharacters in the phrase have no special meaning. A Matcher is
// immutable and safe for concurrent use.
type Matcher struct {
	phrase string
	re     *regexp.Regexp
}

// Compile builds a Matcher for a phrase. The pattern is compiled once here
// and reused for every line of every file in the run.
func Compile(phrase string) (*Matcher, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, errors.New("phrase must not be empty")
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(phrase))
	if err != nil {
		return nil, fmt.Errorf("compiling phrase pattern: %w", err)
	}
	return &Matcher{phrase: phrase, re: re}, nil
}

// Matches reports whether the line contains the phrase.
func (m *Matcher) Matches(line string) bool {
	return m.re.MatchString(line)
}

// Phrase returns the phrase the Matcher was compiled from.
func (m *Matcher) Phrase() string {
	return m.phrase
}
