package client

import (
	"fmt"
	"strings"
)

// Classification is the user-facing explanation of a fault: why it happened
// and what the user can do about it.
type Classification struct {
	Reason     string
	Suggestion string
}

// classifierRule matches a fault message by substring, case-insensitively.
// Rules are checked in order; the first match wins.
type classifierRule struct {
	patterns       []string
	classification Classification
}

var classifierRules = []classifierRule{
	{
		patterns: []string{"400"},
		classification: Classification{
			Reason:     "Invalid request format",
			Suggestion: "Check your input for disallowed or malformed content.",
		},
	},
	{
		patterns: []string{"401", "API key not valid"},
		classification: Classification{
			Reason:     "Invalid API key",
			Suggestion: "Check the API key configured for this persona.",
		},
	},
	{
		patterns: []string{"403"},
		classification: Classification{
			Reason:     "Access denied",
			Suggestion: "Your key may lack permission for this model, or the service is region restricted.",
		},
	},
	{
		patterns: []string{"429"},
		classification: Classification{
			Reason:     "Too many requests",
			Suggestion: "You hit the API rate limit. Wait a moment and try again.",
		},
	},
	{
		patterns: []string{"500", "503"},
		classification: Classification{
			Reason:     "Model service fault",
			Suggestion: "The Gemini service is temporarily unavailable. Try again later.",
		},
	},
	{
		patterns: []string{
			"fetch failed", "connection refused", "connection reset",
			"no such host", "dial tcp", "network unreachable", "timeout",
		},
		classification: Classification{
			Reason:     "Network connection failed",
			Suggestion: "Check your network connection and that the Google API endpoint is reachable.",
		},
	},
	{
		patterns: []string{"API key required"},
		classification: Classification{
			Reason:     "Missing API key",
			Suggestion: "Set a key for this persona in the model picker, or configure a default key.",
		},
	},
}

// fallbackRawLimit is the number of leading runes of an unrecognized fault
// message surfaced to the user.
const fallbackRawLimit = 50

// Classify maps a raw fault message onto the error taxonomy. Unrecognized
// faults fall back to a truncated echo of the raw message with a generic
// retry hint.
func Classify(raw string) Classification {
	for _, rule := range classifierRules {
		for _, p := range rule.patterns {
			if containsFold(raw, p) {
				return rule.classification
			}
		}
	}

	reason := raw
	if runes := []rune(reason); len(runes) > fallbackRawLimit {
		reason = string(runes[:fallbackRawLimit]) + "..."
	}
	return Classification{
		Reason:     reason,
		Suggestion: "Please try again later.",
	}
}

// FormatUserError renders a classified fault as the markdown block shown in
// the chat transcript. There is no machine-readable code: the transcript is
// the only consumer.
func FormatUserError(raw string) string {
	c := Classify(raw)
	return fmt.Sprintf("**The assistant could not reply**\n\n**Reason**: %s\n\n**Suggestion**: %s",
		c.Reason, c.Suggestion)
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
