package session

import "strings"

type Kind int

const (
	// KindArtifact carries the relative path of the finished artifact.
	KindArtifact Kind = iota
	// KindSuccessLog is an informational completion line; never terminal.
	KindSuccessLog
	KindFailure
	KindLog
)

const (
	artifactPrefix = "DOWNLOAD:"
	failurePrefix  = "Error"
)

var successMarkers = []string{
	"Download completed",
	"Download process completed successfully",
}

// Classify maps an event payload to its kind, first match wins. For KindArtifact
// the returned string is the trimmed artifact path, otherwise the payload itself.
func Classify(payload string) (Kind, string) {
	if strings.HasPrefix(payload, artifactPrefix) {
		return KindArtifact, strings.TrimSpace(payload[len(artifactPrefix):])
	}
	for _, marker := range successMarkers {
		if strings.Contains(payload, marker) {
			return KindSuccessLog, payload
		}
	}
	if strings.HasPrefix(payload, failurePrefix) {
		return KindFailure, payload
	}
	return KindLog, payload
}

func (k Kind) String() string {
	switch k {
	case KindArtifact:
		return "artifact"
	case KindSuccessLog:
		return "success-log"
	case KindFailure:
		return "failure"
	}
	return "log"
}
