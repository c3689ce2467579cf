package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rankInput() []FetchResult {
	return []FetchResult{
		{Key: "a", Kind: KindDetail},
		{Key: "b", Kind: KindDetail, Failure: FailureClient},
		{Key: "c", Kind: KindDetail},
		{Key: "d", Kind: KindDetail, Failure: FailureExhausted},
		{Key: "e", Kind: KindDetail},
	}
}

func TestRank_DropPolicyStaysDense(t *testing.T) {
	t.Parallel()
	records := Rank(rankInput(), FailurePolicyDrop)
	require.Len(t, records, 3)
	for i, rec := range records {
		require.Equal(t, i+1, rec.Rank)
		require.False(t, rec.Failed)
	}
	require.Equal(t, []string{"a", "c", "e"}, []string{records[0].Key, records[1].Key, records[2].Key})
}

func TestRank_KeepPolicyRetainsPlaceholders(t *testing.T) {
	t.Parallel()
	records := Rank(rankInput(), FailurePolicyKeep)
	require.Len(t, records, 5)
	for i, rec := range records {
		require.Equal(t, i+1, rec.Rank)
	}
	require.True(t, records[1].Failed)
	require.True(t, records[3].Failed)
	require.Empty(t, records[1].Result.Body)
}

func TestParseFailurePolicy(t *testing.T) {
	t.Parallel()
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	require.Equal(t, FailurePolicyDrop, p)

	p, err = ParseFailurePolicy("keep")
	require.NoError(t, err)
	require.Equal(t, FailurePolicyKeep, p)

	_, err = ParseFailurePolicy("retain")
	require.Error(t, err)
}
