package interview_test

import (
	"io"
	"strings"
	"testing"

	"github.com/crossroads-cli/crossroads/internal/interview"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

func TestCollect_AllDomainsInOrder(t *testing.T) {
	in := strings.NewReader("senior dev\nmarried, two kids\nskip\nstressed\nnothing else\n")
	entries, err := interview.Collect(in, io.Discard)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	wantDomains := tree.Domains()
	for i, e := range entries {
		if e.Domain != wantDomains[i] {
			t.Errorf("entry %d domain = %s, want %s", i, e.Domain, wantDomains[i])
		}
	}
	if entries[0].Text != "senior dev" || entries[0].Skipped {
		t.Errorf("first entry = %+v, want answered career entry", entries[0])
	}
	if !entries[2].Skipped || entries[2].Text != "" {
		t.Errorf("finances entry = %+v, want skipped with empty text", entries[2])
	}
}

func TestCollect_SkipIsCaseInsensitive(t *testing.T) {
	in := strings.NewReader("SKIP\nSkip\nskip\n skip \nanswer\n")
	entries, err := interview.Collect(in, io.Discard)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if !entries[i].Skipped {
			t.Errorf("entry %d not marked skipped", i)
		}
	}
	if entries[4].Skipped {
		t.Error("real answer wrongly marked skipped")
	}
}

func TestCollect_TruncatedInput(t *testing.T) {
	in := strings.NewReader("only one answer\n")
	entries, err := interview.Collect(in, io.Discard)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1 (unasked domains are absent, not skipped)", len(entries))
	}
}

func TestFindYear(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		found bool
	}{
		{"move to Lisbon in 2027", 2027, true},
		{"I was born in 1991 and want out", 1991, true},
		{"save 10000 euros first", 0, false},
		{"no year here", 0, false},
		{"year 2150 is out of range", 0, false},
	}
	for _, tt := range tests {
		got, ok := interview.FindYear(tt.in)
		if ok != tt.found || got != tt.want {
			t.Errorf("FindYear(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.found)
		}
	}
}
