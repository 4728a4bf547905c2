package job

import (
	"errors"
	"testing"
)

func TestMissingRequired(t *testing.T) {
	cases := []struct {
		name  string
		title string
		desc  string
		link  string
		want  error
	}{
		{"complete", "Backend Engineer", "Go services", "https://x/1", nil},
		{"blank title", "  ", "Go services", "https://x/1", ErrMissingRequiredFields},
		{"blank description", "Backend Engineer", "", "https://x/1", ErrMissingRequiredFields},
		{"blank link", "Backend Engineer", "Go services", "", ErrMissingRequiredFields},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MissingRequired(tc.title, tc.desc, tc.link)
			if !errors.Is(got, tc.want) && got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	if ParsePriority("High") != PriorityHigh {
		t.Fatalf("expected high")
	}
	if ParsePriority("LOW") != PriorityLow {
		t.Fatalf("expected low")
	}
	if ParsePriority("") != PriorityMedium {
		t.Fatalf("expected medium default")
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusInProgress.Valid() {
		t.Fatalf("expected In Progress valid")
	}
	if Status("Ghosted").Valid() {
		t.Fatalf("expected unknown status invalid")
	}
}
