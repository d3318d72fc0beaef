package game

import (
	"sync/atomic"
)

// Metrics 记录一局游戏运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount     int64 // 碰撞检测 Tick 次数
	TotalTickNs   int64 // Tick 累计耗时（纳秒）
	MovesAccepted int64 // 进入玩家信箱的移动请求
	MovesDropped  int64 // 因正在移动或模式不符被丢弃的请求
	RateLimited   int64 // 因连接限流被拒绝的输入
	BehaviorTicks int64 // 敌人行为执行次数
	PathsPlaced   int64 // 建造模式下新建的路径数
	LevelsStarted int64 // 进入躲避模式的次数
	ScoreUpdates  int64 // 分数刷新次数
}

func (m *Metrics) IncAccepted()     { atomic.AddInt64(&m.MovesAccepted, 1) }
func (m *Metrics) IncDropped()      { atomic.AddInt64(&m.MovesDropped, 1) }
func (m *Metrics) IncRateLimited()  { atomic.AddInt64(&m.RateLimited, 1) }
func (m *Metrics) IncBehaviorTick() { atomic.AddInt64(&m.BehaviorTicks, 1) }
func (m *Metrics) IncPathPlaced()   { atomic.AddInt64(&m.PathsPlaced, 1) }
func (m *Metrics) IncLevelStarted() { atomic.AddInt64(&m.LevelsStarted, 1) }
func (m *Metrics) IncScoreUpdate()  { atomic.AddInt64(&m.ScoreUpdates, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":     tick,
		"moves_accepted": atomic.LoadInt64(&m.MovesAccepted),
		"moves_dropped":  atomic.LoadInt64(&m.MovesDropped),
		"rate_limited":   atomic.LoadInt64(&m.RateLimited),
		"behavior_ticks": atomic.LoadInt64(&m.BehaviorTicks),
		"paths_placed":   atomic.LoadInt64(&m.PathsPlaced),
		"levels_started": atomic.LoadInt64(&m.LevelsStarted),
		"score_updates":  atomic.LoadInt64(&m.ScoreUpdates),
		"avg_tick_ms":    avgMs,
	}
}
