package filter

import "testing"

func TestAccepts_MatchModes(t *testing.T) {
	keywords := []string{"battery", "camera"}
	products := []string{"pixel", "iphone"}

	tests := []struct {
		name string
		mode string
		body string
		want bool
	}{
		{"and both sets hit", ModeAnd, "the pixel battery drains", true},
		{"and only keyword hits", ModeAnd, "battery drains fast", false},
		{"and only product hits", ModeAnd, "got a new pixel", false},
		{"or only keyword hits", ModeOr, "battery drains fast", true},
		{"or only product hits", ModeOr, "got a new pixel", true},
		{"or neither hits", ModeOr, "nice weather today", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(keywords, products, tt.mode)
			if got := f.Accepts(tt.body, ""); got != tt.want {
				t.Errorf("Accepts(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestAccepts_WholeWordOnly(t *testing.T) {
	f := New([]string{"cam"}, nil, ModeAnd)

	if f.Accepts("the camera is great", "") {
		t.Error("substring inside a longer word must not match")
	}

	if !f.Accepts("mounted a dash cam", "") {
		t.Error("whole word should match")
	}
}

func TestAccepts_CaseInsensitive(t *testing.T) {
	f := New([]string{"battery"}, nil, ModeAnd)

	if !f.Accepts("BATTERY life is ok", "") {
		t.Error("matching should be case-insensitive")
	}
}

func TestAccepts_TitleCounts(t *testing.T) {
	f := New([]string{"battery"}, []string{"pixel"}, ModeAnd)

	if !f.Accepts("battery drains overnight", "Pixel 9 review thread") {
		t.Error("title should participate in matching")
	}
}

func TestAccepts_EmptySetsAreVacuous(t *testing.T) {
	if !New(nil, []string{"pixel"}, ModeAnd).Accepts("about my pixel", "") {
		t.Error("empty keyword set should never block")
	}

	if !New(nil, nil, ModeAnd).Accepts("", "") {
		t.Error("everything empty should be accepted")
	}
}

func TestNew_UnknownModeFallsBackToAnd(t *testing.T) {
	f := New([]string{"battery"}, []string{"pixel"}, "XOR")

	if f.Accepts("battery only", "") {
		t.Error("fallback mode should behave as AND")
	}
}
