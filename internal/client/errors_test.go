package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantReason string
	}{
		{"bad request", "googleapi: Error 400: invalid argument", "Invalid request format"},
		{"unauthorized code", "status 401 from upstream", "Invalid API key"},
		{"invalid key phrase", "API key not valid. Please pass a valid API key.", "Invalid API key"},
		{"invalid key phrase case", "API KEY NOT VALID", "Invalid API key"},
		{"forbidden", "got 403 Forbidden", "Access denied"},
		{"rate limited", "rpc error: code = 429 resource exhausted", "Too many requests"},
		{"server fault", "500 Internal Server Error", "Model service fault"},
		{"unavailable", "upstream returned 503", "Model service fault"},
		{"fetch failed", "TypeError: fetch failed", "Network connection failed"},
		{"dial", "dial tcp 142.250.0.1:443: i/o timeout", "Network connection failed"},
		{"no host", "lookup generativelanguage.googleapis.com: no such host", "Network connection failed"},
		{"missing key", "API key required for persona kimi-sim", "Missing API key"},
		{"first rule wins on overlap", "400 after retrying on 429", "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.wantReason, Classify(tt.raw).Reason)
		})
	}
}

func TestClassifyFallbackTruncates(t *testing.T) {
	raw := strings.Repeat("x", 80)
	c := Classify(raw)
	require.Equal(t, strings.Repeat("x", 50)+"...", c.Reason)
	require.Equal(t, "Please try again later.", c.Suggestion)
}

func TestClassifyFallbackTruncatesByRunes(t *testing.T) {
	raw := strings.Repeat("错", 60)
	c := Classify(raw)
	require.Equal(t, strings.Repeat("错", 50)+"...", c.Reason)
}

func TestClassifyFallbackShortMessageKept(t *testing.T) {
	c := Classify("something odd happened")
	require.Equal(t, "something odd happened", c.Reason)
	require.Equal(t, "Please try again later.", c.Suggestion)
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError("rpc error: code = 429")
	require.Contains(t, got, "**The assistant could not reply**")
	require.Contains(t, got, "**Reason**: Too many requests")
	require.Contains(t, got, "**Suggestion**: ")
}
