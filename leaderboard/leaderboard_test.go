package leaderboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Board {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "scores.txt"))
	require.NoError(t, err)
	return b
}

func TestAppendAndLoad(t *testing.T) {
	b := open(t)
	recs, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, b.Append(Record{Difficulty: 'n', Username: "alice", Score: 1234.5}))
	require.NoError(t, b.Append(Record{Difficulty: 'h', Username: "bob", Score: 99}))

	data, err := os.ReadFile(b.Path())
	require.NoError(t, err)
	assert.Equal(t, "n|alice|1234.50\nh|bob|99.00\n", string(data))

	recs, err = b.Load()
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Difficulty: 'n', Username: "alice", Score: 1234.5},
		{Difficulty: 'h', Username: "bob", Score: 99},
	}, recs)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "evilname", Sanitize("evil|na\nme"))
	assert.Equal(t, "anonymous", Sanitize(" |\n "))

	b := open(t)
	require.NoError(t, b.Append(Record{Difficulty: 'e', Username: "a|b", Score: 1}))
	recs, err := b.Load()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ab", recs[0].Username)

	assert.ErrorIs(t, b.Append(Record{Username: "x"}), ErrMalformed)
}

func TestLoadMalformed(t *testing.T) {
	b := open(t)
	require.NoError(t, os.WriteFile(b.Path(), []byte("n|alice|10\n\nn|bob\n"), 0o644))
	_, err := b.Load()
	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "line 3")

	require.NoError(t, os.WriteFile(b.Path(), []byte("n|alice|lots\n"), 0o644))
	_, err = b.Load()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestTop(t *testing.T) {
	b := open(t)
	for _, r := range []Record{
		{'n', "a", 10}, {'h', "b", 500}, {'n', "c", 30}, {'n', "d", 20}, {'n', "e", 30},
	} {
		require.NoError(t, b.Append(r))
	}

	top, err := b.Top('n', 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"c", "e", "d"}, []string{top[0].Username, top[1].Username, top[2].Username})

	all, err := b.Top(0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "b", all[0].Username)

	none, err := b.Top('i', 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
