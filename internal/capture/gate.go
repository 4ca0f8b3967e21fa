package capture

import "regexp"

// noisePatterns match whole-body or whole-segment artifacts that are
// never worth capturing: channel/message metadata, tool-call payload
// markers, leading timestamps, and bare XML-tag bodies.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*\[channel[_ ]?id[:=]`),
	regexp.MustCompile(`(?i)^\s*\[\w*\s*message[_ ]?id[:=]\s*\d+\]`),
	regexp.MustCompile(`^\s*\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`),
	regexp.MustCompile(`(?i)^\s*\[tool[_ ]?(call|result|use)[:=]`),
	regexp.MustCompile(`^\s*<[a-zA-Z][\w-]*>[\s\S]*</[a-zA-Z][\w-]*>\s*$`),
}

// IsNoise reports whether text matches a whole-body noise pattern.
func IsNoise(text string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Gate reports whether a turn should proceed into segmentation at all.
func Gate(enabled bool, turnSucceeded bool, turnOutput string) bool {
	if !enabled {
		return false
	}
	if !turnSucceeded {
		return false
	}
	if IsNoise(turnOutput) {
		return false
	}
	return true
}
