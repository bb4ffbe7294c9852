package keyphrase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePhrases(t *testing.T) {
	got, err := parsePhrases(`["battery life", "camera", "battery life", "screen"]`)
	require.NoError(t, err)

	require.Len(t, got, 3, "duplicates must be removed")
	require.Equal(t, "battery life", got[0].Label)
	require.Equal(t, "camera", got[1].Label)
	require.Greater(t, got[0].Hits, got[1].Hits, "salience rank should decrease")
}

func TestParsePhrases_CodeFence(t *testing.T) {
	got, err := parsePhrases("```json\n[\"camera\"]\n```")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "camera", got[0].Label)
}

func TestParsePhrases_CapsAtFive(t *testing.T) {
	got, err := parsePhrases(`["a","b","c","d","e","f","g"]`)
	require.NoError(t, err)
	require.Len(t, got, maxAspects)
}

func TestParsePhrases_Invalid(t *testing.T) {
	_, err := parsePhrases("sorry, I cannot help with that")
	require.Error(t, err)
}

func TestParsePhrases_Empty(t *testing.T) {
	got, err := parsePhrases("[]")
	require.NoError(t, err)
	require.Empty(t, got)
}
