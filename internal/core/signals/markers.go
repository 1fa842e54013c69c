package signals

import "strings"

// interventionMarkers are the phrases the synthesis stage uses to watermark
// content it considers unresolved. Matching is case-insensitive substring
// search over the final artifact.
var interventionMarkers = []string{
	"pending leadership resolution",
	"pending review",
	"draft - pending",
	"requires intervention",
	"escalation required",
	"unresolved conflict",
}

// HasInterventionMarker reports whether the artifact text contains any
// unresolved-work marker phrase.
func HasInterventionMarker(artifact string) bool {
	lower := strings.ToLower(artifact)
	for _, marker := range interventionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
