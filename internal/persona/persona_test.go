package persona

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range List() {
		require.False(t, seen[p.ID], "duplicate persona id %q", p.ID)
		seen[p.ID] = true
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.ModelName)
	}
}

func TestResolveFallsBackToFirst(t *testing.T) {
	first := List()[0]

	require.Equal(t, "gemini-flash", Resolve("gemini-flash").ID)
	require.Equal(t, first.ID, Resolve("no-such-persona").ID)
	require.Equal(t, first.ID, Resolve("").ID)
}

func TestApplyKeyOverrides(t *testing.T) {
	personas := List()
	out := ApplyKeyOverrides(personas, []KeyOverride{
		{ID: "kimi-sim", UserAPIKey: "kimi-key"},
		{ID: "no-such-persona", UserAPIKey: "orphan"},
	})

	for _, p := range out {
		if p.ID == "kimi-sim" {
			require.Equal(t, "kimi-key", p.UserAPIKey)
		} else {
			require.Empty(t, p.UserAPIKey)
		}
	}

	// The input slice is untouched.
	for _, p := range personas {
		require.Empty(t, p.UserAPIKey)
	}
}

func TestApplyKeyOverridesEmpty(t *testing.T) {
	personas := List()
	require.Equal(t, personas, ApplyKeyOverrides(personas, nil))
}

func TestExtractKeyOverridesRoundTrip(t *testing.T) {
	personas := ApplyKeyOverrides(List(), []KeyOverride{
		{ID: "gemini-flash", UserAPIKey: "flash-key"},
		{ID: "tongyi-sim", UserAPIKey: "qwen-key"},
	})

	got := ExtractKeyOverrides(personas)
	require.ElementsMatch(t, []KeyOverride{
		{ID: "gemini-flash", UserAPIKey: "flash-key"},
		{ID: "tongyi-sim", UserAPIKey: "qwen-key"},
	}, got)

	require.Nil(t, ExtractKeyOverrides(List()))
}
