package session

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		payload  string
		wantKind Kind
		wantText string
	}{
		{"DOWNLOAD: songs/abc.mp3", KindArtifact, "songs/abc.mp3"},
		{"DOWNLOAD:  1234/My%20Album.zip  ", KindArtifact, "1234/My%20Album.zip"},
		{"Download completed. Files saved to server directory.", KindSuccessLog, "Download completed. Files saved to server directory."},
		{"[spotdl] Download process completed successfully", KindSuccessLog, "[spotdl] Download process completed successfully"},
		{"Error: rate limited", KindFailure, "Error: rate limited"},
		{"Error Download completed", KindSuccessLog, "Error Download completed"},
		{"Fetching metadata", KindLog, "Fetching metadata"},
		{"An Error occurred somewhere", KindLog, "An Error occurred somewhere"},
		{"download: lowercase prefix", KindLog, "download: lowercase prefix"},
		{"", KindLog, ""},
	}
	for _, tt := range tests {
		kind, text := Classify(tt.payload)
		if kind != tt.wantKind {
			t.Errorf("Classify(%q) kind = %s, want %s", tt.payload, kind, tt.wantKind)
		}
		if text != tt.wantText {
			t.Errorf("Classify(%q) text = %q, want %q", tt.payload, text, tt.wantText)
		}
	}
}

func TestHeuristicStep(t *testing.T) {
	p := 0
	for i := 0; i < 20; i++ {
		next := HeuristicStep(p)
		if next < p {
			t.Fatalf("progress decreased from %d to %d", p, next)
		}
		if next > 95 {
			t.Fatalf("progress exceeded cap: %d", next)
		}
		p = next
	}
	if p != 95 {
		t.Errorf("expected progress to settle at 95, got %d", p)
	}
}
