package level

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"pathmania/behavior"
	"pathmania/geom"
)

var (
	// ErrUnknownBehavior 关卡文件里出现未知的行为类型
	ErrUnknownBehavior = errors.New("level: unknown behavior")
	// ErrInvalidSpawn 生成参数非法
	ErrInvalidSpawn = errors.New("level: invalid spawn")
)

// Position 生成位置：固定坐标，或 "random"（从已访问坐标中随机选）
type Position struct {
	Random bool
	At     geom.Vec2
}

// UnmarshalYAML 支持 `random` 与 `[x, y]` 两种写法
func (p *Position) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		if strings.EqualFold(n.Value, "random") {
			*p = Position{Random: true}
			return nil
		}
		return fmt.Errorf("%w: position %q", ErrInvalidSpawn, n.Value)
	}
	var xy []float64
	if err := n.Decode(&xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("%w: position needs [x, y], got %v", ErrInvalidSpawn, xy)
	}
	*p = Position{At: geom.V(xy[0], xy[1])}
	return nil
}

func (p Position) MarshalYAML() (any, error) {
	if p.Random {
		return "random", nil
	}
	return []float64{p.At.X, p.At.Y}, nil
}

// Spawn 一个敌人的生成参数
type Spawn struct {
	Behavior     string   `yaml:"behavior"`
	TargetPlayer *bool    `yaml:"target_player,omitempty"`
	Pos          Position `yaml:"pos"`
	Size         float64  `yaml:"size"`
	Speed        *float64 `yaml:"speed,omitempty"`
	TurnSpeed    float64  `yaml:"turn_speed"`
	HitboxRadius float64  `yaml:"hitbox_radius"`
	Headingless  bool     `yaml:"headingless"`
	CooldownMs   int      `yaml:"cooldown_ms"`
}

// Kind 已校验的行为类型
func (s Spawn) Kind() behavior.Kind {
	k, _ := behavior.ParseKind(s.Behavior)
	return k
}

// Targets 是否以玩家为目标（缺省为 true）
func (s Spawn) Targets() bool { return s.TargetPlayer == nil || *s.TargetPlayer }

// DefaultSize 未配置 size 时敌人的尺寸
const DefaultSize = 5

// Radius 碰撞半径；未配置时等于 Size
func (s Spawn) Radius() float64 {
	switch {
	case s.HitboxRadius > 0:
		return s.HitboxRadius
	case s.Size > 0:
		return s.Size
	}
	return DefaultSize
}

// SpeedOr 配置的移动速度；未配置时取 def（难度决定）
func (s Spawn) SpeedOr(def float64) float64 {
	if s.Speed == nil {
		return def
	}
	return *s.Speed
}

// Cooldown 跳跃冷却
func (s Spawn) Cooldown() time.Duration { return time.Duration(s.CooldownMs) * time.Millisecond }

func (s Spawn) validate() error {
	if _, err := behavior.ParseKind(s.Behavior); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownBehavior, s.Behavior)
	}
	if s.Size < 0 || s.HitboxRadius < 0 || s.CooldownMs < 0 {
		return fmt.Errorf("%w: negative size, radius or cooldown", ErrInvalidSpawn)
	}
	return nil
}

type file struct {
	Levels map[int][]Spawn `yaml:"levels"`
}

// Table 关卡号 -> 生成动作；没有配置的关卡执行空动作
type Table struct {
	mu     sync.RWMutex
	levels map[int][]Spawn
}

// Parse 解析 YAML 关卡表
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("level: unmarshal: %w", err)
	}
	for lv, spawns := range f.Levels {
		if lv < 1 {
			return nil, fmt.Errorf("%w: level %d must be >= 1", ErrInvalidSpawn, lv)
		}
		for i, s := range spawns {
			if err := s.validate(); err != nil {
				return nil, fmt.Errorf("level %d spawn %d: %w", lv, i, err)
			}
		}
	}
	if f.Levels == nil {
		f.Levels = make(map[int][]Spawn)
	}
	return &Table{levels: f.Levels}, nil
}

// Load 从文件加载关卡表
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: load %s: %w", path, err)
	}
	return Parse(data)
}

// Default 内置关卡：第 1 关一个追击者，第 3 关一个冲锋者
func Default() *Table {
	return &Table{levels: map[int][]Spawn{
		1: {{Behavior: "chase", Size: 1, Speed: ptr(0.0), TurnSpeed: 0, Headingless: true}},
		3: {{Behavior: "charge", Size: 1, Speed: ptr(10.0), TurnSpeed: 1.5}},
	}}
}

func ptr[T any](v T) *T { return &v }

// Actions 指定关卡的生成列表（副本）
func (t *Table) Actions(level int) []Spawn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.levels[level])
}

// Set 设置某关的生成列表
func (t *Table) Set(level int, spawns ...Spawn) error {
	for _, s := range spawns {
		if err := s.validate(); err != nil {
			return err
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.levels[level] = spawns
	return nil
}

// Remove 删除某关的配置
func (t *Table) Remove(level int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.levels, level)
}

// Replace 用 other 的内容替换（热更新时保持指针不变）
func (t *Table) Replace(other *Table) {
	other.mu.RLock()
	levels := make(map[int][]Spawn, len(other.levels))
	for k, v := range other.levels {
		levels[k] = slices.Clone(v)
	}
	other.mu.RUnlock()

	t.mu.Lock()
	t.levels = levels
	t.mu.Unlock()
}

// Levels 已配置的关卡号（升序）
func (t *Table) Levels() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]int, 0, len(t.levels))
	for k := range t.levels {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Marshal 序列化为 YAML
func (t *Table) Marshal() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return yaml.Marshal(file{Levels: t.levels})
}
