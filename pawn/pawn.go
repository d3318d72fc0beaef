package pawn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pathmania/arena"
	"pathmania/geom"
	"pathmania/logger"
)

// ErrInvalidConfig 构造参数非法
var ErrInvalidConfig = errors.New("pawn: invalid configuration")

// Host 棋子所在的游戏：提供竞技场并告知是否冻结
type Host interface {
	Arena() *arena.Arena
	Frozen() bool
}

// Config 棋子构造参数
type Config struct {
	Name         string
	Pos          geom.Vec2
	Speed        float64       // 每 tick 移动距离，<=0 瞬移
	TurnSpeed    float64       // 每 tick 转动角度；0 取 2*Speed，<0 瞬间转向
	HitboxRadius float64       // 圆形碰撞半径
	Headingless  bool          // 移动时不转向
	Tick         time.Duration // 插值步进间隔，0 表示不等待
}

// Result 一次移动的结果；Moved=false 表示请求被吸收（撞墙、冻结、正在移动）
type Result struct {
	Moved   bool
	Created bool // 登记了至少一条新路径
	From    geom.Vec2
	To      geom.Vec2
	Steps   int
}

type request struct {
	dir  geom.Direction
	opts []MoveOption
	done func(Result)
}

// Pawn 棋子：位置、朝向与 Idle -> Moving -> Idle 状态机。
// 同一时刻至多一个移动在执行，移动中到达的请求直接丢弃（不排队）。
type Pawn struct {
	name string
	host Host
	cfg  Config

	mu      sync.RWMutex
	pos     geom.Vec2
	heading float64
	drawing bool

	moving   atomic.Bool
	startRun sync.Once

	// 容量为 1 的信箱：pending 的读写与 moving 的认领都在 reqMu 下完成
	reqMu   sync.Mutex
	pending *request
	wake    chan struct{}

	accepted atomic.Int64
	dropped  atomic.Int64
}

// New 创建棋子
func New(host Host, cfg Config) (*Pawn, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: nil host", ErrInvalidConfig)
	}
	if cfg.HitboxRadius < 0 {
		return nil, fmt.Errorf("%w: hitbox radius %v", ErrInvalidConfig, cfg.HitboxRadius)
	}
	if cfg.Tick < 0 {
		return nil, fmt.Errorf("%w: tick %v", ErrInvalidConfig, cfg.Tick)
	}
	return &Pawn{
		name:    cfg.Name,
		host:    host,
		cfg:     cfg,
		pos:     cfg.Pos,
		wake:    make(chan struct{}, 1),
	}, nil
}

// Name 棋子名称，用于日志与任务命名
func (p *Pawn) Name() string { return p.name }

// Speed 每 tick 移动距离
func (p *Pawn) Speed() float64 { return p.cfg.Speed }

// TurnSpeed 每 tick 转动角度
func (p *Pawn) TurnSpeed() float64 { return p.cfg.TurnSpeed }

// HitboxRadius 圆形碰撞半径
func (p *Pawn) HitboxRadius() float64 { return p.cfg.HitboxRadius }

// Headingless 是否从不转向
func (p *Pawn) Headingless() bool { return p.cfg.Headingless }

// IsMoving 是否有移动正在执行
func (p *Pawn) IsMoving() bool { return p.moving.Load() }

// Accepted 通过校验并执行的移动数
func (p *Pawn) Accepted() int64 { return p.accepted.Load() }

// Dropped 因忙碌或被替换而丢弃的请求数
func (p *Pawn) Dropped() int64 { return p.dropped.Load() }

// Position 当前位置（移动中为插值点）
func (p *Pawn) Position() geom.Vec2 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos
}

// Heading 当前朝向（度）
func (p *Pawn) Heading() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.heading
}

// Drawing 是否处于落笔（绘制路径）状态
func (p *Pawn) Drawing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.drawing
}

// Teleport 立即移动到 pos，不做校验
func (p *Pawn) Teleport(pos geom.Vec2) {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
}

// Center 回到原点
func (p *Pawn) Center() { p.Teleport(geom.Zero) }

// Intersects 圆形碰撞：圆心距离不超过两半径之和
func (p *Pawn) Intersects(other *Pawn) bool {
	if other == nil || other == p {
		return false
	}
	return p.Position().Distance(other.Position()) <= p.cfg.HitboxRadius+other.cfg.HitboxRadius
}

// Move 在调用方 goroutine 中同步执行一次移动
func (p *Pawn) Move(dir geom.Direction, opts ...MoveOption) Result {
	if !p.moving.CompareAndSwap(false, true) {
		p.dropped.Add(1)
		return Result{}
	}
	return p.moveClaimed(dir, opts)
}

// moveClaimed 调用方已将 moving 置为 true
func (p *Pawn) moveClaimed(dir geom.Direction, opts []MoveOption) Result {
	defer p.moving.Store(false)

	if p.host.Frozen() || !dir.Valid() {
		return Result{}
	}
	return p.move(dir, buildOptions(opts))
}

func (p *Pawn) move(dir geom.Direction, o MoveOptions) Result {
	ar := p.host.Arena()
	start := p.Position().Grid(ar.CellLength())

	var dest geom.Vec2
	steps := 1
	if o.Greedy {
		dest, steps = ar.DestinationGreedy(start, dir, arena.GreedyOptions{
			MaxSteps:   o.MaxGreedySteps,
			PathBound:  o.ValidatePath,
			CoordBound: !o.ValidatePath,
		})
	} else {
		dest = ar.Step(start, dir)
		if (o.ValidateBorder && !ar.InBounds(dest)) || (o.ValidatePath && !ar.PathExistsBetween(start, dest)) {
			steps = 0
		}
	}
	if steps == 0 {
		logger.Log.Debugf("pawn %s: move %v from %v rejected", p.name, dir, start)
		return Result{From: start, To: start}
	}
	p.accepted.Add(1)

	p.setDrawing(o.Path)
	defer p.setDrawing(false)

	if o.ChangeHeading {
		turn := p.cfg.TurnSpeed
		if o.turnSpeed != nil {
			turn = *o.turnSpeed
		}
		if turn == 0 {
			turn = p.cfg.Speed * 2
		}
		for _, h := range InterpolateDeg(p.Heading(), dir.Heading(), turn) {
			p.mu.Lock()
			p.heading = h
			p.mu.Unlock()
			p.sleep()
		}
	}

	speed := p.cfg.Speed
	if o.speed != nil {
		speed = *o.speed
	}
	for _, pt := range InterpolateVec(start, dest, speed) {
		p.mu.Lock()
		p.pos = pt
		p.mu.Unlock()
		p.sleep()
	}
	// 消除浮点漂移，精确落在目标格
	p.Teleport(dest)

	res := Result{Moved: true, From: start, To: dest, Steps: steps}
	if o.Path {
		from := start
		for i := 0; i < steps; i++ {
			to := ar.Step(from, dir)
			created, err := ar.AddPath(from, to)
			if err != nil {
				logger.Log.Warnf("pawn %s: register path: %v", p.name, err)
			}
			res.Created = res.Created || created
			from = to
		}
	}
	return res
}

func (p *Pawn) setDrawing(v bool) {
	p.mu.Lock()
	p.drawing = v
	p.mu.Unlock()
}

func (p *Pawn) sleep() {
	if p.cfg.Tick > 0 {
		time.Sleep(p.cfg.Tick)
	}
}

// Start 启动棋子的移动消费协程（每个棋子一个），ctx 结束时退出
func (p *Pawn) Start(ctx context.Context) {
	p.startRun.Do(func() {
		go p.run(ctx)
	})
}

func (p *Pawn) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		}
		req, ok := p.claim()
		if !ok {
			continue
		}
		res := p.moveClaimed(req.dir, req.opts)
		if req.done != nil {
			req.done(res)
		}
	}
}

// claim 取出待处理请求并同时占用 moving
func (p *Pawn) claim() (*request, bool) {
	p.reqMu.Lock()
	defer p.reqMu.Unlock()
	req := p.pending
	if req == nil {
		return nil, false
	}
	p.pending = nil
	if !p.moving.CompareAndSwap(false, true) {
		// 同步 Move 正在执行
		p.dropped.Add(1)
		return nil, false
	}
	return req, true
}

// RequestMove 异步请求移动：正在移动则丢弃并返回 false；
// 空闲时放入容量为 1 的信箱，未被取走的旧请求被新请求替换。
func (p *Pawn) RequestMove(dir geom.Direction, opts ...MoveOption) bool {
	return p.RequestMoveThen(dir, nil, opts...)
}

// RequestMoveThen 同 RequestMove，移动结束后在消费协程中回调 done
func (p *Pawn) RequestMoveThen(dir geom.Direction, done func(Result), opts ...MoveOption) bool {
	p.reqMu.Lock()
	if p.moving.Load() {
		p.reqMu.Unlock()
		p.dropped.Add(1)
		return false
	}
	if p.pending != nil {
		// 替换未处理的旧请求
		p.dropped.Add(1)
	}
	p.pending = &request{dir: dir, opts: opts, done: done}
	p.reqMu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return true
}
