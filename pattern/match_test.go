package pattern

import (
	"testing"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		pattern string
		index   int
		found   bool
	}{
		{
			name:    "wildcard never completes inside range",
			data:    []byte{0x90, 0x11, 0x22, 0x90, 0x33},
			pattern: "90 ? 90",
			found:   false,
		},
		{
			name:    "lowest of two matches",
			data:    []byte{0xAA, 0xBB, 0xCC, 0xAA, 0xFF, 0xCC},
			pattern: "AA ? CC",
			index:   0,
			found:   true,
		},
		{
			name:    "match at last position",
			data:    []byte{0x00, 0x01, 0x02, 0x03},
			pattern: "02 03",
			index:   2,
			found:   true,
		},
		{
			name:    "all wildcards match at start",
			data:    []byte{0x10, 0x20, 0x30},
			pattern: "? ? ?",
			index:   0,
			found:   true,
		},
		{
			name:    "pattern longer than data",
			data:    []byte{0x10, 0x20},
			pattern: "? ? ?",
			found:   false,
		},
		{
			name:    "empty data",
			data:    nil,
			pattern: "00",
			found:   false,
		},
		{
			name:    "exact match",
			data:    []byte{0x48, 0x8B, 0x05, 0x10, 0x20, 0x30, 0x40},
			pattern: "48 8B 05",
			index:   0,
			found:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, found := Match(tt.data, MustParse(tt.pattern))
			if found != tt.found {
				t.Fatalf("expected found=%v - got %v", tt.found, found)
			}
			if found && index != tt.index {
				t.Fatalf("expected index %d - got %d", tt.index, index)
			}
		})
	}
}

func TestMatchEmptyPattern(t *testing.T) {
	if _, found := Match([]byte{1, 2, 3}, nil); found {
		t.Fatal("expected empty pattern to never match")
	}
	if matches := MatchAll([]byte{1, 2, 3}, Pattern{}); matches != nil {
		t.Fatalf("expected no matches - got %v", matches)
	}
}

func TestMatchAll(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0xAA, 0xFF, 0xCC, 0xAA}
	matches := MatchAll(data, MustParse("AA ? CC"))

	if len(matches) != 2 || matches[0] != 0 || matches[1] != 3 {
		t.Fatalf("expected [0 3] - got %v", matches)
	}
}

func TestMatchIdempotent(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x01, 0x02, 0x03}
	p := MustParse("02 ? 01")

	first, ok := Match(data, p)
	for i := 0; i < 3; i++ {
		again, ok2 := Match(data, p)
		if again != first || ok2 != ok {
			t.Fatalf("expected repeated match %d,%v - got %d,%v", first, ok, again, ok2)
		}
	}
}

// naiveMatch is the reference definition: every non-wildcard token equals its aligned byte
func naiveMatch(data []byte, p Pattern) (int, bool) {
	for a := 0; a+len(p) <= len(data); a++ {
		ok := true
		for j := range p {
			if !p[j].Wildcard && p[j].Value != data[a+j] {
				ok = false
			}
		}
		if ok && len(p) > 0 {
			return a, true
		}
	}
	return 0, false
}

func TestMatchAgreesWithReference(t *testing.T) {
	data := make([]byte, 512)
	seed := uint32(7)
	for i := range data {
		seed = seed*1664525 + 1013904223
		data[i] = byte(seed>>24) & 0x07
	}

	patterns := []string{"01 02", "00 ? 00", "07 07 07", "? 03 ? 05", "06 ? ? ? 06", "01 02 03 04 05 06"}
	for _, text := range patterns {
		p := MustParse(text)
		gotIndex, gotFound := Match(data, p)
		expIndex, expFound := naiveMatch(data, p)
		if gotFound != expFound || (gotFound && gotIndex != expIndex) {
			t.Fatalf("%q: expected %d,%v - got %d,%v", text, expIndex, expFound, gotIndex, gotFound)
		}
	}
}
