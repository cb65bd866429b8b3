package backend

import "testing"

func TestArtifactURL(t *testing.T) {
	tests := []struct{ base, path, want string }{
		{"http://host:5000", "songs/abc.mp3", "http://host:5000/downloads/songs/abc.mp3"},
		{"http://host:5000/", "/abc/My%20Song.mp3", "http://host:5000/downloads/abc/My%20Song.mp3"},
	}
	for _, tt := range tests {
		if got := ArtifactURL(tt.base, tt.path); got != tt.want {
			t.Errorf("ArtifactURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestArtifactName(t *testing.T) {
	tests := map[string]string{
		"songs/abc.mp3":                     "abc.mp3",
		"1234/Artist/Album/My%20Song.mp3":   "My Song.mp3",
		"1234/Album%20Name.zip":             "Album Name.zip",
		"1234/a%2Fb.mp3":                    "a_b.mp3",
		"1234/..":                           "download",
		"1234/bad%zzname.mp3":               "bad%zzname.mp3",
	}
	for in, want := range tests {
		if got := ArtifactName(in); got != want {
			t.Errorf("ArtifactName(%q) = %q, want %q", in, got, want)
		}
	}
}
