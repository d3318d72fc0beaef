package level

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathmania/behavior"
	"pathmania/geom"
)

const sample = `
levels:
  1:
    - behavior: chase
      size: 1
      headingless: true
  2:
    - behavior: jumper
      pos: random
      cooldown_ms: 1500
      target_player: true
    - behavior: random
      pos: [50, -25]
      target_player: false
      size: 3
      hitbox_radius: 2
`

func TestParse(t *testing.T) {
	tbl, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, tbl.Levels())

	one := tbl.Actions(1)
	require.Len(t, one, 1)
	assert.Equal(t, behavior.KindChase, one[0].Kind())
	assert.True(t, one[0].Targets())
	assert.Equal(t, 1.0, one[0].Radius())
	assert.Equal(t, geom.Zero, one[0].Pos.At)

	two := tbl.Actions(2)
	require.Len(t, two, 2)
	assert.True(t, two[0].Pos.Random)
	assert.Equal(t, 1500*time.Millisecond, two[0].Cooldown())
	assert.Equal(t, float64(DefaultSize), two[0].Radius())
	assert.False(t, two[1].Targets())
	assert.Equal(t, geom.V(50, -25), two[1].Pos.At)
	assert.Equal(t, 2.0, two[1].Radius())
	assert.Equal(t, 7.5, two[1].SpeedOr(7.5))

	assert.Empty(t, tbl.Actions(7), "unconfigured levels do nothing")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("levels:\n  1:\n    - behavior: teleport\n"))
	assert.ErrorIs(t, err, ErrUnknownBehavior)

	_, err = Parse([]byte("levels:\n  1:\n    - behavior: chase\n      pos: [1]\n"))
	assert.ErrorIs(t, err, ErrInvalidSpawn)

	_, err = Parse([]byte("levels:\n  1:\n    - behavior: chase\n      pos: nowhere\n"))
	assert.ErrorIs(t, err, ErrInvalidSpawn)

	_, err = Parse([]byte("levels:\n  0:\n    - behavior: chase\n"))
	assert.ErrorIs(t, err, ErrInvalidSpawn)

	_, err = Parse([]byte("levels:\n  1:\n    - behavior: chase\n      size: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidSpawn)

	_, err = Parse([]byte("levels: [oops"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	tbl := Default()
	assert.Equal(t, []int{1, 3}, tbl.Levels())
	assert.Equal(t, behavior.KindChase, tbl.Actions(1)[0].Kind())
	assert.Equal(t, behavior.KindCharge, tbl.Actions(3)[0].Kind())
	assert.Equal(t, 10.0, tbl.Actions(3)[0].SpeedOr(5))
	assert.Equal(t, 0.0, tbl.Actions(1)[0].SpeedOr(5), "explicit zero is kept")
}

func TestMarshalRoundTrip(t *testing.T) {
	tbl, err := Parse([]byte(sample))
	require.NoError(t, err)
	data, err := tbl.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, tbl.Actions(2), again.Actions(2))
}

func TestSetAndRemove(t *testing.T) {
	tbl := Default()
	require.NoError(t, tbl.Set(5, Spawn{Behavior: "jumper"}))
	assert.Equal(t, []int{1, 3, 5}, tbl.Levels())
	assert.ErrorIs(t, tbl.Set(6, Spawn{Behavior: "ghost"}), ErrUnknownBehavior)
	tbl.Remove(1)
	assert.Equal(t, []int{3, 5}, tbl.Levels())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	w, err := Watch(path, tbl)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("levels:\n  4:\n    - behavior: charge\n"), 0o644))
	select {
	case got := <-w.Reloads:
		assert.Same(t, tbl, got)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}
	assert.Equal(t, []int{4}, tbl.Levels())
}

func TestWatchKeepsTableOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	tbl, err := Load(path)
	require.NoError(t, err)
	w, err := Watch(path, tbl)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("levels:\n  1:\n    - behavior: ghost\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, []int{1, 2}, tbl.Levels())
}
