package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pathmania/arena"
	"pathmania/behavior"
	"pathmania/config"
	"pathmania/geom"
	"pathmania/leaderboard"
	"pathmania/level"
	"pathmania/logger"
	"pathmania/pawn"
	"pathmania/scheduler"
)

var (
	// ErrNegativePaths 路径数不能为负
	ErrNegativePaths = errors.New("game: paths cannot be negative")
	// ErrLevelRunning 关卡进行中，不能再次开始
	ErrLevelRunning = errors.New("game: currently in level; cannot start")
	// ErrGameOver 游戏已结束
	ErrGameOver = errors.New("game: game is over")
	// ErrNotStarted Start 之前的调用
	ErrNotStarted = errors.New("game: not started")
)

// Mode 游戏状态
type Mode int32

const (
	Frozen Mode = iota // 冻结：任何移动都被吸收
	Build              // 建造：玩家移动时铺设路径
	Evade              // 躲避：只能沿路径移动，敌人行动
)

func (m Mode) String() string {
	switch m {
	case Frozen:
		return "FROZEN"
	case Build:
		return "BUILD"
	case Evade:
		return "EVADE"
	}
	return fmt.Sprintf("Mode(%d)", int32(m))
}

const (
	taskLevelUp   = "levelup"
	taskCollision = "collision"
	taskScore     = "score"
)

// Outcome 游戏结束时的结算
type Outcome struct {
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
	Level  int     `json:"level"`
}

// Enemy 敌人棋子及其行为
type Enemy struct {
	Pawn     *pawn.Pawn
	Behavior behavior.Behavior
	task     string
}

// Option 构造选项
type Option func(*Game)

// WithLeaderboard 游戏结束时写入排行榜
func WithLeaderboard(b *leaderboard.Board, username string, difficulty byte) Option {
	return func(g *Game) {
		g.board = b
		g.username = username
		g.difficulty = difficulty
	}
}

// WithRand 指定随机源（随机出生点）
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// OnGameOver 注册结束回调
func OnGameOver(fn func(Outcome)) Option {
	return func(g *Game) { g.hooks = append(g.hooks, fn) }
}

// Game 编排一局游戏：竞技场、玩家、敌人、计分与关卡推进。
// 周期任务全部挂在传入的调度器上，Close 时一并停止。
type Game struct {
	cfg    config.GameConfig
	arena  *arena.Arena
	sched  *scheduler.Scheduler
	levels *level.Table
	log    *zap.SugaredLogger

	board      *leaderboard.Board
	username   string
	difficulty byte
	rng        *rand.Rand
	hooks      []func(Outcome)

	ctx    context.Context
	cancel context.CancelFunc

	mode      atomic.Int32
	liveScore atomic.Uint64 // math.Float64bits，由 score 任务刷新

	mu           sync.Mutex
	started      bool
	over         bool
	outcome      Outcome
	level        int
	score        float64
	roundStart   time.Time
	paths        int
	behaviorTick time.Duration
	player       *pawn.Pawn
	enemies      []*Enemy

	metrics Metrics
}

// New 创建游戏；levels 为 nil 时使用内置关卡
func New(cfg config.GameConfig, ar *arena.Arena, sched *scheduler.Scheduler, levels *level.Table, opts ...Option) (*Game, error) {
	if ar == nil || sched == nil {
		return nil, errors.New("game: arena and scheduler are required")
	}
	if cfg.TPS <= 0 || cfg.BehaviorTick <= 0 {
		return nil, fmt.Errorf("game: tps %d / behavior tick %v must be positive", cfg.TPS, cfg.BehaviorTick)
	}
	if levels == nil {
		levels = level.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		cfg:          cfg,
		arena:        ar,
		sched:        sched,
		levels:       levels,
		log:          logger.Named("game"),
		ctx:          ctx,
		cancel:       cancel,
		level:        1,
		behaviorTick: cfg.BehaviorTick,
	}
	for _, o := range opts {
		o(g)
	}
	g.mode.Store(int32(Frozen))
	return g, nil
}

// Start 生成玩家，进入第 1 关建造模式并启动碰撞与计分任务
func (g *Game) Start() error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return nil
	}
	player, err := pawn.New(g, pawn.Config{
		Name:         "player",
		Pos:          geom.Zero,
		Speed:        g.cfg.PlayerSpeed,
		TurnSpeed:    g.cfg.PlayerTurnSpeed,
		HitboxRadius: g.cfg.PlayerHitbox,
		Tick:         g.cfg.TickInterval(),
	})
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("game: spawn player: %w", err)
	}
	g.player = player
	g.started = true
	g.mu.Unlock()

	player.Start(g.ctx)
	if err := g.SetLevel(1); err != nil {
		return err
	}
	g.sched.AddTicker(taskCollision, max(g.cfg.TickInterval()/2, time.Millisecond), g.checkCollisions)
	if g.cfg.ScoreUpdateInterval > 0 {
		g.sched.AddTicker(taskScore, g.cfg.ScoreUpdateInterval, g.updateScore)
	}
	g.log.Infof("game started: arena=%d cell=%v player=%s", g.arena.Size(), g.arena.CellLength(), g.username)
	return nil
}

// Close 结束所有协程与定时任务
func (g *Game) Close() {
	g.cancel()
	g.sched.Stop()
}

// Arena 本局竞技场
func (g *Game) Arena() *arena.Arena { return g.arena }
func (g *Game) Mode() Mode          { return Mode(g.mode.Load()) }
func (g *Game) Frozen() bool        { return g.Mode() == Frozen }
func (g *Game) EvadeMode() bool     { return g.Mode() == Evade }
func (g *Game) BuildMode() bool     { return g.Mode() == Build }
func (g *Game) Metrics() *Metrics   { return &g.metrics }

// After 把行为的延迟任务（如技能冷却）挂到调度器上
func (g *Game) After(name string, d time.Duration, fn func()) {
	g.sched.AddDelay(name, d, fn)
}

func (g *Game) setMode(m Mode) { g.mode.Store(int32(m)) }

// Player 玩家棋子；Start 之前为 nil
func (g *Game) Player() *pawn.Pawn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player
}

// Enemies 当前敌人列表（副本）
func (g *Game) Enemies() []*Enemy {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Enemy, len(g.enemies))
	copy(out, g.enemies)
	return out
}

// Level 当前关卡
func (g *Game) Level() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level
}

// Paths 剩余路径预算
func (g *Game) Paths() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paths
}

// Over 游戏是否已结束
func (g *Game) Over() (Outcome, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome, g.over
}

// Score 当前分数，躲避模式下包含本关已累计的时间分
func (g *Game) Score() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scoreLocked(time.Now())
}

func (g *Game) scoreLocked(now time.Time) float64 {
	if g.roundStart.IsZero() {
		return g.score
	}
	return g.score + g.cfg.ScorePerSecond(g.level)*now.Sub(g.roundStart).Seconds()
}

// bankLocked 把本关时间分计入总分
func (g *Game) bankLocked(now time.Time) {
	g.score = g.scoreLocked(now)
	g.roundStart = time.Time{}
}

// SetPaths 设置剩余可放置的路径数
func (g *Game) SetPaths(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativePaths, n)
	}
	g.mu.Lock()
	g.paths = n
	g.mu.Unlock()
	return nil
}

// BehaviorTick 敌人行为的执行间隔
func (g *Game) BehaviorTick() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.behaviorTick
}

// SetBehaviorTick 修改所有敌人的行为间隔（重新注册周期任务）
func (g *Game) SetBehaviorTick(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("game: behavior tick must be positive, got %v", d)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.behaviorTick = d
	if g.over {
		return nil
	}
	for _, e := range g.enemies {
		g.scheduleLocked(e)
	}
	return nil
}

// MovePlayer 按当前模式移动玩家。建造模式下铺设路径并消耗预算，
// 预算用尽时自动开始关卡；躲避模式下只能沿已有路径移动。
// 返回请求是否进入玩家信箱。
func (g *Game) MovePlayer(dir geom.Direction, greedy bool) bool {
	player := g.Player()
	if player == nil || !dir.Valid() {
		return false
	}

	var (
		opts []pawn.MoveOption
		done func(pawn.Result)
	)
	switch g.Mode() {
	case Build:
		if g.Paths() <= 0 {
			g.metrics.IncDropped()
			return false
		}
		opts = append(opts, pawn.WithPath())
		done = g.onPathMove
	case Evade:
		if greedy {
			opts = append(opts, pawn.Greedy(-1))
		}
	default:
		g.metrics.IncDropped()
		return false
	}

	if !player.RequestMoveThen(dir, done, opts...) {
		g.metrics.IncDropped()
		return false
	}
	g.metrics.IncAccepted()
	return true
}

// onPathMove 建造模式下一次移动结束：新建路径时消耗预算
func (g *Game) onPathMove(res pawn.Result) {
	if !res.Created {
		return
	}
	g.metrics.IncPathPlaced()

	g.mu.Lock()
	if g.Mode() != Build {
		g.mu.Unlock()
		return
	}
	g.paths = max(g.paths-1, 0)
	left := g.paths
	g.mu.Unlock()

	if left > 0 {
		return
	}
	g.arena.ChartAllDistances()
	if err := g.BeginLevel(); err != nil {
		g.log.Warnf("auto begin level: %v", err)
	}
}

// BeginLevel 进入躲避模式，关卡时长结束后自动进入下一关
func (g *Game) BeginLevel() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case !g.started:
		return ErrNotStarted
	case g.over:
		return ErrGameOver
	case !g.roundStart.IsZero() || g.sched.Pending(taskLevelUp):
		return ErrLevelRunning
	}

	g.roundStart = time.Now()
	g.setMode(Evade)
	lv := g.level
	duration := g.cfg.LevelDurationFor(lv)
	g.sched.AddDelay(taskLevelUp, duration, func() {
		if err := g.SetLevel(lv + 1); err != nil {
			g.log.Debugf("level up skipped: %v", err)
		}
	})
	g.metrics.IncLevelStarted()
	g.log.Infof("level %d begins: duration=%v enemies=%d paths=%d", lv, duration, len(g.enemies), g.arena.NumPaths())
	return nil
}

// SetLevel 执行 n 关的生成动作，结算时间分，进入建造模式并发放路径；
// n > 1 时加上一关的升级奖励。
func (g *Game) SetLevel(n int) error {
	if n < 1 {
		return fmt.Errorf("game: level must be >= 1, got %d", n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrNotStarted
	}
	if g.over {
		return ErrGameOver
	}
	g.sched.Remove(taskLevelUp)

	for i, s := range g.levels.Actions(n) {
		if err := g.spawnLocked(n, i, s); err != nil {
			g.log.Warnf("level %d spawn %d: %v", n, i, err)
		}
	}

	g.bankLocked(time.Now())
	g.setMode(Build)
	g.paths = g.cfg.LevelPaths(n)
	if n != 1 {
		g.score += g.cfg.LevelupBonus(n - 1)
	}
	g.level = n
	g.arena.ClearDistances()
	g.liveScore.Store(floatBits(g.score))
	g.log.Infof("level set: level=%d paths=%d score=%.2f", n, g.paths, g.score)
	return nil
}

// GameOver 冻结游戏，停止关卡与敌人任务，结算并写入排行榜；重复调用无效
func (g *Game) GameOver(reason string) {
	g.mu.Lock()
	if g.over {
		g.mu.Unlock()
		return
	}
	g.over = true
	g.setMode(Frozen)
	g.bankLocked(time.Now())
	g.outcome = Outcome{Reason: reason, Score: g.score, Level: g.level}
	out := g.outcome
	g.sched.Remove(taskLevelUp)
	g.sched.Remove(taskCollision)
	g.sched.Remove(taskScore)
	for _, e := range g.enemies {
		g.sched.Remove(e.task)
	}
	hooks := append([]func(Outcome){}, g.hooks...)
	g.liveScore.Store(floatBits(g.score))
	g.mu.Unlock()

	g.log.Infof("GAMEOVER: %s level=%d score=%.2f", reason, out.Level, out.Score)
	if g.board != nil {
		rec := leaderboard.Record{Difficulty: g.difficulty, Username: g.username, Score: out.Score}
		if err := g.board.Append(rec); err != nil {
			g.log.Errorf("leaderboard append: %v", err)
		}
	}
	for _, fn := range hooks {
		fn(out)
	}
}
