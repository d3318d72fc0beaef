package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrUnknownDifficulty 未配置的难度
var ErrUnknownDifficulty = errors.New("config: unknown difficulty")

type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Arena           ArenaConfig           `mapstructure:"arena"`
	Game            GameConfig            `mapstructure:"game"`
	LevelsFile      string                `mapstructure:"levels_file"`     // 空则使用内置关卡
	LeaderboardFile string                `mapstructure:"leaderboard_file"` // 空则不记录
	Difficulties    map[string]Difficulty `mapstructure:"difficulties"`
}

type ServerConfig struct {
	Addr             string        `mapstructure:"addr"`
	LogFile          string        `mapstructure:"log_file"`
	LogLevel         string        `mapstructure:"log_level"`
	InputRate        float64       `mapstructure:"input_rate"` // 每连接每秒输入上限
	InputBurst       int           `mapstructure:"input_burst"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
}

type ArenaConfig struct {
	Size       int     `mapstructure:"size"`
	CellLength float64 `mapstructure:"cell_length"`
}

// GameConfig 计分、关卡与棋子参数
type GameConfig struct {
	TPS          int           `mapstructure:"tps"`
	BehaviorTick time.Duration `mapstructure:"behavior_tick"`

	ScoreUpdateInterval  time.Duration `mapstructure:"score_update_interval"`
	ScorePerSec          float64       `mapstructure:"score_per_sec"`
	LevelScoreModifier   float64       `mapstructure:"level_score_modifier"`
	LevelupScoreBonus    float64       `mapstructure:"levelup_score_bonus"`
	LevelupScoreModifier float64       `mapstructure:"levelup_score_modifier"`

	LevelDuration         time.Duration `mapstructure:"level_duration"`
	LevelDurationModifier time.Duration `mapstructure:"level_duration_modifier"` // 可为负
	LevelDurationMin      time.Duration `mapstructure:"level_duration_min"`
	LevelDurationMax      time.Duration `mapstructure:"level_duration_max"`

	Paths             int `mapstructure:"paths"`
	LevelPathModifier int `mapstructure:"level_path_modifier"`
	PathsMin          int `mapstructure:"paths_min"`
	PathsMax          int `mapstructure:"paths_max"`

	JumperCooldown time.Duration `mapstructure:"jumper_cooldown"`
	EnemySpeed     float64       `mapstructure:"enemy_speed"` // 关卡未指定速度时使用

	PlayerSpeed     float64 `mapstructure:"player_speed"`
	PlayerTurnSpeed float64 `mapstructure:"player_turn_speed"`
	PlayerHitbox    float64 `mapstructure:"player_hitbox"`
}

// Difficulty 难度预设，覆盖 GameConfig / ArenaConfig 的部分字段
type Difficulty struct {
	BehaviorTick time.Duration `mapstructure:"behavior_tick"`
	EnemySpeed   float64       `mapstructure:"enemy_speed"`
	Paths        int           `mapstructure:"paths"`
	ArenaSize    int           `mapstructure:"arena_size"`
}

var presets = map[string]Difficulty{
	"easy":       {BehaviorTick: 400 * time.Millisecond, EnemySpeed: 8, Paths: 80, ArenaSize: 20},
	"normal":     {BehaviorTick: 200 * time.Millisecond, EnemySpeed: 5, Paths: 60, ArenaSize: 18},
	"hard":       {BehaviorTick: 100 * time.Millisecond, EnemySpeed: 3, Paths: 30, ArenaSize: 14},
	"impossible": {BehaviorTick: 50 * time.Millisecond, EnemySpeed: 2, Paths: 25, ArenaSize: 12},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.log_file", "app.log")
	v.SetDefault("server.log_level", "debug")
	v.SetDefault("server.input_rate", 20)
	v.SetDefault("server.input_burst", 10)
	v.SetDefault("server.snapshot_interval", "50ms")

	v.SetDefault("arena.size", 20)
	v.SetDefault("arena.cell_length", 25)

	v.SetDefault("game.tps", 200)
	v.SetDefault("game.behavior_tick", "400ms")
	v.SetDefault("game.score_update_interval", "200ms")
	v.SetDefault("game.score_per_sec", 50)
	v.SetDefault("game.level_score_modifier", 1)
	v.SetDefault("game.levelup_score_bonus", 200)
	v.SetDefault("game.levelup_score_modifier", 150)
	v.SetDefault("game.level_duration", "30s")
	v.SetDefault("game.level_duration_modifier", "5s")
	v.SetDefault("game.level_duration_min", "20s")
	v.SetDefault("game.level_duration_max", "120s")
	v.SetDefault("game.paths", 25)
	v.SetDefault("game.level_path_modifier", -3)
	v.SetDefault("game.paths_min", 1)
	v.SetDefault("game.paths_max", 50)
	v.SetDefault("game.jumper_cooldown", "2s")
	v.SetDefault("game.enemy_speed", 5)
	v.SetDefault("game.player_speed", 5)
	v.SetDefault("game.player_turn_speed", -1)
	v.SetDefault("game.player_hitbox", 5)

	v.SetDefault("levels_file", "")
	v.SetDefault("leaderboard_file", "scores.txt")

	for name, d := range presets {
		v.SetDefault("difficulties."+name+".behavior_tick", d.BehaviorTick.String())
		v.SetDefault("difficulties."+name+".enemy_speed", d.EnemySpeed)
		v.SetDefault("difficulties."+name+".paths", d.Paths)
		v.SetDefault("difficulties."+name+".arena_size", d.ArenaSize)
	}
}

// Load 读取 YAML 配置；path 为空时只使用默认值与环境变量（PATHMANIA_GAME_TPS 等）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("pathmania")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 默认配置
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	switch {
	case c.Game.TPS <= 0:
		return fmt.Errorf("config: game.tps must be positive, got %d", c.Game.TPS)
	case c.Game.BehaviorTick <= 0:
		return fmt.Errorf("config: game.behavior_tick must be positive, got %v", c.Game.BehaviorTick)
	case c.Arena.Size < 1 || c.Arena.CellLength <= 0:
		return fmt.Errorf("config: arena size %d / cell length %v", c.Arena.Size, c.Arena.CellLength)
	case c.Game.PathsMin > c.Game.PathsMax:
		return fmt.Errorf("config: paths_min %d > paths_max %d", c.Game.PathsMin, c.Game.PathsMax)
	case c.Game.LevelDurationMin > c.Game.LevelDurationMax:
		return fmt.Errorf("config: level_duration_min %v > level_duration_max %v",
			c.Game.LevelDurationMin, c.Game.LevelDurationMax)
	}
	return nil
}

// DifficultyNames 已配置的难度（升序）
func (c *Config) DifficultyNames() []string {
	out := make([]string, 0, len(c.Difficulties))
	for k := range c.Difficulties {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// WithDifficulty 返回应用了难度预设的副本；name 可以是全称或首字母
func (c *Config) WithDifficulty(name string) (*Config, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, full := range c.DifficultyNames() {
		if name != full && (len(name) != 1 || name[0] != full[0]) {
			continue
		}
		d := c.Difficulties[full]
		out := *c
		if d.BehaviorTick > 0 {
			out.Game.BehaviorTick = d.BehaviorTick
		}
		if d.EnemySpeed > 0 {
			out.Game.EnemySpeed = d.EnemySpeed
		}
		if d.Paths > 0 {
			out.Game.Paths = d.Paths
			out.Game.PathsMax = max(out.Game.PathsMax, d.Paths)
		}
		if d.ArenaSize > 0 {
			out.Arena.Size = d.ArenaSize
		}
		return &out, full, nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
}

// DifficultyCode 难度的单字母代码，用于排行榜
func DifficultyCode(name string) byte {
	if name == "" {
		return '?'
	}
	return strings.ToLower(name)[0]
}

// TickInterval 插值步进间隔 = 1/tps
func (g GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TPS)
}

// ScorePerSecond 关卡的每秒得分
func (g GameConfig) ScorePerSecond(level int) float64 {
	return g.ScorePerSec + float64(level-1)*g.LevelScoreModifier
}

// LevelDurationFor 关卡时长，夹在 [min, max]
func (g GameConfig) LevelDurationFor(level int) time.Duration {
	d := g.LevelDuration + time.Duration(level-1)*g.LevelDurationModifier
	return min(max(d, g.LevelDurationMin), g.LevelDurationMax)
}

// LevelPaths 关卡可放置的路径数，夹在 [min, max]
func (g GameConfig) LevelPaths(level int) int {
	p := g.Paths + (level-1)*g.LevelPathModifier
	return min(max(p, g.PathsMin), g.PathsMax)
}

// LevelupBonus 通过 level 关后的奖励分
func (g GameConfig) LevelupBonus(level int) float64 {
	return g.LevelupScoreBonus + float64(level-1)*g.LevelupScoreModifier
}
