package aoi

import (
	"testing"
)

func TestParseFootprint(t *testing.T) {

	ring, err := ParseFootprint("3.26,47.36 3.27,47.36 3.27,47.37 3.26,47.37")

	if err != nil {
		t.Fatalf("Failed to parse footprint, %v", err)
	}

	if len(ring) != 5 {
		t.Fatalf("Expected ring to be closed with 5 points, got %d", len(ring))
	}

	ring, err = ParseFootprint("\n\t3.26,47.36,0 3.27,47.36,0 3.27,47.37,0 3.26,47.36,0\n")

	if err != nil {
		t.Fatalf("Failed to parse footprint with altitudes, %v", err)
	}

	if len(ring) != 4 {
		t.Fatalf("Expected already closed ring to keep 4 points, got %d", len(ring))
	}
}

func TestParseFootprintErrors(t *testing.T) {

	tests := []string{
		"",
		"   ",
		"3.26",
		"3.26,47.36,0,1",
		"abc,47.36",
		"3.26,north",
		"3.26,47.36,abc",
		"3.26,47.36,",
	}

	for _, text := range tests {
		if _, err := ParseFootprint(text); err == nil {
			t.Fatalf("Expected error parsing '%s'", text)
		}
	}
}

func TestIntersects(t *testing.T) {

	b := New(0, 0, 10, 10)

	tests := map[string]struct {
		footprint string
		expected  bool
	}{
		"contained":          {"2,2 4,2 4,4 2,4 2,2", true},
		"disjoint":           {"20,20 30,20 30,30 20,30 20,20", false},
		"shared edge":        {"10,0 20,0 20,10 10,10 10,0", true},
		"shared corner":      {"10,10 20,10 20,20 10,20 10,10", true},
		"point on boundary":  {"10,5", true},
		"point outside":      {"11,5", false},
		"overlapping":        {"5,5 15,5 15,15 5,15 5,5", true},
		"covers box":         {"-5,-5 15,-5 15,15 -5,15 -5,-5", true},
		"crossing band":      {"-5,4 15,4 15,6 -5,6 -5,4", true},
		"disjoint in bounds": {"8,20 20,8 20,20 8,20", false},
	}

	for name, test := range tests {

		ok, err := b.IntersectsText(test.footprint)

		if err != nil {
			t.Fatalf("Failed to test %s, %v", name, err)
		}

		if ok != test.expected {
			t.Fatalf("Unexpected result for %s: %t, expected %t", name, ok, test.expected)
		}
	}
}

func TestIntersectsTextError(t *testing.T) {

	if _, err := New(0, 0, 1, 1).IntersectsText("1;2 3;4"); err == nil {
		t.Fatalf("Expected parse error")
	}
}
