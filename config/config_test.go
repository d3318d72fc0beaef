package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.SnapshotInterval)
	assert.Equal(t, 20, cfg.Arena.Size)
	assert.Equal(t, 25.0, cfg.Arena.CellLength)
	assert.Equal(t, 200, cfg.Game.TPS)
	assert.Equal(t, 400*time.Millisecond, cfg.Game.BehaviorTick)
	assert.Equal(t, 30*time.Second, cfg.Game.LevelDuration)
	assert.Equal(t, 2*time.Second, cfg.Game.JumperCooldown)
	assert.Equal(t, -3, cfg.Game.LevelPathModifier)
	assert.Equal(t, -1.0, cfg.Game.PlayerTurnSpeed)
	assert.Equal(t, []string{"easy", "hard", "impossible", "normal"}, cfg.DifficultyNames())
	assert.Equal(t, 100*time.Millisecond, cfg.Difficulties["hard"].BehaviorTick)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
arena:
  size: 10
game:
  tps: 100
  behavior_tick: 250ms
difficulties:
  hard:
    paths: 12
levels_file: levels.yaml
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Arena.Size)
	assert.Equal(t, 25.0, cfg.Arena.CellLength, "unset keys keep defaults")
	assert.Equal(t, 10*time.Millisecond, cfg.Game.TickInterval())
	assert.Equal(t, 250*time.Millisecond, cfg.Game.BehaviorTick)
	assert.Equal(t, "levels.yaml", cfg.LevelsFile)
	assert.Equal(t, 12, cfg.Difficulties["hard"].Paths)
	assert.Equal(t, 14, cfg.Difficulties["hard"].ArenaSize, "partial preset keeps other defaults")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  tps: 0\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "tps")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PATHMANIA_GAME_PATHS", "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Game.Paths)
}

func TestFormulas(t *testing.T) {
	g := Default().Game

	assert.Equal(t, 50.0, g.ScorePerSecond(1))
	assert.Equal(t, 52.0, g.ScorePerSecond(3))

	assert.Equal(t, 30*time.Second, g.LevelDurationFor(1))
	assert.Equal(t, 40*time.Second, g.LevelDurationFor(3))
	assert.Equal(t, 120*time.Second, g.LevelDurationFor(100))

	assert.Equal(t, 25, g.LevelPaths(1))
	assert.Equal(t, 19, g.LevelPaths(3))
	assert.Equal(t, 1, g.LevelPaths(50))

	assert.Equal(t, 200.0, g.LevelupBonus(1))
	assert.Equal(t, 500.0, g.LevelupBonus(3))

	g.LevelDurationModifier = -10 * time.Second
	assert.Equal(t, 20*time.Second, g.LevelDurationFor(5))
}

func TestWithDifficulty(t *testing.T) {
	base := Default()

	cfg, name, err := base.WithDifficulty("h")
	require.NoError(t, err)
	assert.Equal(t, "hard", name)
	assert.Equal(t, 100*time.Millisecond, cfg.Game.BehaviorTick)
	assert.Equal(t, 3.0, cfg.Game.EnemySpeed)
	assert.Equal(t, 14, cfg.Arena.Size)
	assert.Equal(t, 30, cfg.Game.LevelPaths(1))
	assert.Equal(t, 400*time.Millisecond, base.Game.BehaviorTick, "base is untouched")

	cfg, _, err = base.WithDifficulty(" Easy ")
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Game.LevelPaths(1), "preset paths raise the cap")

	_, _, err = base.WithDifficulty("nightmare")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)

	assert.Equal(t, byte('n'), DifficultyCode("normal"))
	assert.Equal(t, byte('?'), DifficultyCode(""))
}
