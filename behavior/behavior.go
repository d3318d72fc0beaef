package behavior

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"pathmania/arena"
	"pathmania/geom"
	"pathmania/logger"
	"pathmania/pawn"
)

// DefaultCooldown 跳跃者默认冷却
const DefaultCooldown = 2000 * time.Millisecond

// Env 行为运行所需的游戏接口
type Env interface {
	Delayer
	Arena() *arena.Arena
	EvadeMode() bool
	GameOver(reason string)
}

// Kind 行为类型
type Kind string

const (
	KindRandom Kind = "random"
	KindChase  Kind = "chase"
	KindCharge Kind = "charge"
	KindJumper Kind = "jumper"
)

// ParseKind 解析行为类型
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindRandom, KindChase, KindCharge, KindJumper:
		return k, nil
	}
	return "", fmt.Errorf("behavior: unknown kind %q", s)
}

// Behavior 敌人 AI 策略，1:1 绑定一个棋子
type Behavior interface {
	Kind() Kind
	Attach(owner *pawn.Pawn, env Env)
	Owner() *pawn.Pawn
	Enact()
}

// Targeted 需要追踪目标的行为
type Targeted interface {
	Target() *pawn.Pawn
	SetTarget(*pawn.Pawn)
}

// New 按类型构造行为；cooldown 仅对 jumper 有效，<=0 取默认
func New(kind Kind, target *pawn.Pawn, cooldown time.Duration) (Behavior, error) {
	switch kind {
	case KindRandom:
		return NewRandom(target, nil), nil
	case KindChase:
		return NewChase(target), nil
	case KindCharge:
		return NewCharge(target), nil
	case KindJumper:
		if cooldown <= 0 {
			cooldown = DefaultCooldown
		}
		return NewJumper(target, cooldown)
	}
	return nil, fmt.Errorf("behavior: unknown kind %q", kind)
}

type base struct {
	owner *pawn.Pawn
	env   Env
}

func (b *base) Attach(owner *pawn.Pawn, env Env) {
	b.owner = owner
	b.env = env
}

func (b *base) Owner() *pawn.Pawn { return b.owner }

func (b *base) active() bool {
	return b.owner != nil && b.env != nil && b.env.EvadeMode()
}

func (b *base) moveOpts(extra ...pawn.MoveOption) []pawn.MoveOption {
	return append([]pawn.MoveOption{pawn.WithHeading(!b.owner.Headingless())}, extra...)
}

// catch 检测与目标的碰撞
func (b *base) catch(target *pawn.Pawn) {
	if target != nil && b.owner.Intersects(target) {
		b.env.GameOver(fmt.Sprintf("caught by %s", b.owner.Name()))
	}
}

// step 请求移动并在移动结束后检测碰撞；请求被丢弃时按当前位置检测
func (b *base) step(dir geom.Direction, target *pawn.Pawn, opts ...pawn.MoveOption) bool {
	ok := b.owner.RequestMoveThen(dir, func(pawn.Result) { b.catch(target) }, opts...)
	if !ok {
		b.catch(target)
	}
	return ok
}

// tracker 对目标棋子的非拥有引用
type tracker struct {
	target atomic.Pointer[pawn.Pawn]
}

func (t *tracker) Target() *pawn.Pawn     { return t.target.Load() }
func (t *tracker) SetTarget(p *pawn.Pawn) { t.target.Store(p) }

// Random 在当前有路径的方向中均匀随机选择
type Random struct {
	base
	tracker
	rng *rand.Rand
}

// NewRandom target 可为 nil（不做碰撞检测）；rng 为 nil 时用全局随机源
func NewRandom(target *pawn.Pawn, rng *rand.Rand) *Random {
	r := &Random{rng: rng}
	r.SetTarget(target)
	return r
}

func (r *Random) Kind() Kind { return KindRandom }

func (r *Random) Enact() {
	if !r.active() {
		return
	}
	ar := r.env.Arena()
	pos := r.owner.Position()
	var dirs []geom.Direction
	for _, d := range geom.Directions {
		if ar.PathExists(pos, d) {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) == 0 {
		return
	}
	var i int
	if r.rng != nil {
		i = r.rng.IntN(len(dirs))
	} else {
		i = rand.IntN(len(dirs))
	}
	r.step(dirs[i], r.Target(), r.moveOpts()...)
}

// Chase 沿最短路径追击目标；charge=true 时一次冲到走廊尽头（Charge 行为）
type Chase struct {
	base
	tracker
	charge bool
}

// NewChase 逐格追击 target
func NewChase(target *pawn.Pawn) *Chase {
	c := &Chase{}
	c.SetTarget(target)
	return c
}

// NewCharge 每次贪婪冲刺到走廊尽头
func NewCharge(target *pawn.Pawn) *Chase {
	c := NewChase(target)
	c.charge = true
	return c
}

func (c *Chase) Kind() Kind {
	if c.charge {
		return KindCharge
	}
	return KindChase
}

func (c *Chase) Enact() {
	if !c.active() || c.Target() == nil {
		return
	}
	c.chase()
}

// BestDirection 沿路径到目标的最优方向；无可走方向时 ok=false
func (c *Chase) BestDirection() (geom.Direction, bool) {
	return c.best(false)
}

func (c *Chase) best(ignorePaths bool) (geom.Direction, bool) {
	target := c.Target()
	if target == nil || c.owner == nil || c.env == nil {
		return geom.North, false
	}
	opts := c.env.Arena().MovementOptions(c.owner.Position(), target.Position(), ignorePaths)
	if len(opts) == 0 {
		logger.Log.Debugf("behavior: %s has no route to %s", c.owner.Name(), target.Name())
		return geom.North, false
	}
	return opts[0].Direction, true
}

func (c *Chase) chase() {
	dir, ok := c.BestDirection()
	if !ok {
		return
	}
	var extra []pawn.MoveOption
	if c.charge {
		extra = append(extra, pawn.Greedy(-1))
	}
	c.step(dir, c.Target(), c.moveOpts(extra...)...)
}

// Jumper 追击者，外加每个冷却周期一次跨越缺失路径的能力
type Jumper struct {
	Chase
	*Ability

	jumps atomic.Int64
}

// NewJumper 能力初始为 READY，cooldown 为充能时长
func NewJumper(target *pawn.Pawn, cooldown time.Duration) (*Jumper, error) {
	ab, err := NewAbility(cooldown, Ready)
	if err != nil {
		return nil, err
	}
	j := &Jumper{Ability: ab}
	j.SetTarget(target)
	return j, nil
}

func (j *Jumper) Kind() Kind { return KindJumper }

// Attach 同时把冷却定时器命名到所属棋子
func (j *Jumper) Attach(owner *pawn.Pawn, env Env) {
	j.Chase.Attach(owner, env)
	if owner != nil {
		j.Ability.timer = "ability/" + owner.Name()
	}
}

// Jumps 已完成的跳跃次数
func (j *Jumper) Jumps() int64 { return j.jumps.Load() }

func (j *Jumper) Enact() {
	if !j.active() || j.Target() == nil {
		return
	}
	if !j.IsReady() {
		j.chase()
		return
	}

	dir, ok := j.best(true)
	if !ok || j.env.Arena().PathExists(j.owner.Position(), dir) {
		j.chase()
		return
	}

	// 最优方向没有路径：跳过去
	if !j.step(dir, j.Target(), j.moveOpts(pawn.WithoutPathValidation())...) {
		return
	}
	j.Use()
	j.jumps.Add(1)
	if err := j.Charge(j.env); err != nil {
		logger.Log.Warnf("behavior: %s charge: %v", j.owner.Name(), err)
	}
}
