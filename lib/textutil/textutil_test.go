package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "politz,josephgibbs", NormalizeName("  Politz,  Joseph\tGibbs\n"))
	require.Equal(t, "cse8b", NormalizeName("CSE 8B"))
	require.Equal(t, "", NormalizeName(" "))
}

func TestMatchName(t *testing.T) {
	matchers := []string{NormalizeName("Joseph Gibbs"), ""}
	require.True(t, MatchName("Politz, Joseph Gibbs", matchers))
	require.False(t, MatchName("Jones, Miles E", matchers))
	require.False(t, MatchName("anyone", []string{""}))
}
