package backend

import (
	"net/url"
	"strings"
)

// ArtifactURL builds the reference for a finished download. path is used exactly
// as the server sent it, already percent-encoded.
func ArtifactURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/downloads/" + strings.TrimLeft(path, "/")
}

// ArtifactName is the decoded last segment of path, used as the local filename.
func ArtifactName(path string) string {
	segment := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		segment = path[i+1:]
	}
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	// never let a decoded name escape the output directory
	segment = strings.NewReplacer("/", "_", "\\", "_").Replace(segment)
	if segment == "" || segment == "." || segment == ".." {
		return "download"
	}
	return segment
}
