package workflow

import "testing"

func TestSanitizeWorkflowNameStripsControlCharacters(t *testing.T) {
	got := sanitizeWorkflowName("bad\nname\twith\rcontrol")
	want := "badnamewithcontrol"
	if got != want {
		t.Fatalf("sanitizeWorkflowName() = %q, want %q", got, want)
	}
}

func TestPriorityString(t *testing.T) {
	cases := map[Priority]string{
		PriorityHigh:   "HIGH",
		PriorityMedium: "MEDIUM",
		PriorityLow:    "LOW",
		Priority(99):   "UNKNOWN",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Errorf("Priority(%d).String() = %q, want %q", p, got, want)
		}
	}
}
