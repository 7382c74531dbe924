// Package pattern parses AOB signatures and matches them against memory.
//
// A signature is written as whitespace-separated tokens, each either a
// two-digit hex byte or a wildcard:
//
//	48 8B ? ? 89 05
package pattern

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedPattern is returned when a signature token is neither a wildcard nor a hex byte.
	ErrMalformedPattern = errors.New("malformed pattern")

	// ErrEmptyPattern is returned for signatures without any tokens.
	ErrEmptyPattern = fmt.Errorf("%w: empty pattern", ErrMalformedPattern)
)

// Error describes the offending token of a malformed signature
type Error struct {
	Index int    // Token position, zero based
	Token string // Token text as written
}

func (e *Error) Error() string {
	return fmt.Sprintf("malformed pattern: token %d %q is not a hex byte or '?'", e.Index, e.Token)
}

func (e *Error) Unwrap() error {
	return ErrMalformedPattern
}

// Token is a single pattern position
type Token struct {
	Value    byte
	Wildcard bool
}

// Matches reports whether b satisfies the token
func (t Token) Matches(b byte) bool {
	return t.Wildcard || t.Value == b
}

// Pattern is an ordered sequence of match tokens
type Pattern []Token

// Parse parses the textual signature form. Tokens are exactly two hex digits
// (any case) or a wildcard, written "?" or "??".
func Parse(text string) (Pattern, error) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil, ErrEmptyPattern
	}

	pattern := make(Pattern, 0, len(parts))

	for i, part := range parts {
		if part == "?" || part == "??" {
			pattern = append(pattern, Token{Wildcard: true})
			continue
		}

		if len(part) != 2 {
			return nil, &Error{Index: i, Token: part}
		}

		val, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return nil, &Error{Index: i, Token: part}
		}
		pattern = append(pattern, Token{Value: byte(val)})
	}

	return pattern, nil
}

// MustParse is like Parse but panics on malformed input. Use it for literal signatures.
func MustParse(text string) Pattern {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// FromMask builds a pattern from a byte/mask pair where mask 0x00 marks a wildcard
func FromMask(data, mask []byte) (Pattern, error) {
	if len(data) != len(mask) {
		return nil, fmt.Errorf("pattern and mask must be of the same length")
	}
	if len(data) == 0 {
		return nil, ErrEmptyPattern
	}

	pattern := make(Pattern, len(data))
	for i := range data {
		pattern[i] = Token{Value: data[i], Wildcard: mask[i] == 0}
	}
	return pattern, nil
}

// Bytes returns the exact bytes of the pattern with wildcards as zero
func (p Pattern) Bytes() []byte {
	out := make([]byte, len(p))
	for i, t := range p {
		if !t.Wildcard {
			out[i] = t.Value
		}
	}
	return out
}

// Mask returns 0xFF for exact positions and 0x00 for wildcards
func (p Pattern) Mask() []byte {
	out := make([]byte, len(p))
	for i, t := range p {
		if !t.Wildcard {
			out[i] = 0xFF
		}
	}
	return out
}

// String renders the pattern in canonical form, e.g. "48 8B ? 05"
func (p Pattern) String() string {
	var sb strings.Builder
	for i, t := range p {
		if i > 0 {
			sb.WriteString(" ")
		}
		if t.Wildcard {
			sb.WriteString("?")
		} else {
			fmt.Fprintf(&sb, "%02X", t.Value)
		}
	}
	return sb.String()
}
