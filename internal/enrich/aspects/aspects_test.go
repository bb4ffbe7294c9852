package aspects

import (
	"context"
	"testing"
)

func labels(aspects []Aspect) []string {
	out := make([]string, len(aspects))
	for i, a := range aspects {
		out[i] = a.Label
	}

	return out
}

func TestAspects_BatteryAndCamera(t *testing.T) {
	tagger := NewTagger(0, 1)

	got, err := tagger.Aspects(context.Background(), "battery drains fast and camera is great")
	if err != nil {
		t.Fatalf("Aspects() error = %v", err)
	}

	want := []string{"battery", "camera"}

	gotLabels := labels(got)
	if len(gotLabels) != len(want) {
		t.Fatalf("Aspects() = %v, want %v", gotLabels, want)
	}

	for i := range want {
		if gotLabels[i] != want[i] {
			t.Errorf("Aspects()[%d] = %q, want %q", i, gotLabels[i], want[i])
		}
	}
}

func TestAspects_RankByHitsThenAlphabetical(t *testing.T) {
	tagger := NewTagger(0, 1)

	// screen gets two hits (screen, display), battery and camera one each.
	got, err := tagger.Aspects(context.Background(), "screen display battery camera")
	if err != nil {
		t.Fatalf("Aspects() error = %v", err)
	}

	gotLabels := labels(got)
	want := []string{"screen", "battery", "camera"}

	for i := range want {
		if gotLabels[i] != want[i] {
			t.Fatalf("Aspects() = %v, want %v", gotLabels, want)
		}
	}
}

func TestAspects_MinHitsThreshold(t *testing.T) {
	tagger := NewTagger(0, 2)

	got, err := tagger.Aspects(context.Background(), "the camera is fine")
	if err != nil {
		t.Fatalf("Aspects() error = %v", err)
	}

	if len(got) != 0 {
		t.Errorf("single hit should not pass minHits=2, got %v", labels(got))
	}
}

func TestAspects_TopK(t *testing.T) {
	tagger := NewTagger(1, 1)

	got, err := tagger.Aspects(context.Background(), "battery camera screen price shipping")
	if err != nil {
		t.Fatalf("Aspects() error = %v", err)
	}

	if len(got) != 1 {
		t.Errorf("topK=1 should keep one aspect, got %v", labels(got))
	}
}

func TestAspects_EmptyText(t *testing.T) {
	tagger := NewTagger(0, 1)

	got, err := tagger.Aspects(context.Background(), "")
	if err != nil {
		t.Fatalf("Aspects() error = %v", err)
	}

	if len(got) != 0 {
		t.Errorf("empty text should yield no aspects, got %v", labels(got))
	}
}

func TestCSV(t *testing.T) {
	csv := CSV([]Aspect{{Label: "battery", Hits: 2}, {Label: "camera", Hits: 1}})
	if csv != "battery,camera" {
		t.Errorf("CSV() = %q, want %q", csv, "battery,camera")
	}

	if CSV(nil) != "" {
		t.Errorf("CSV(nil) = %q, want empty", CSV(nil))
	}
}
