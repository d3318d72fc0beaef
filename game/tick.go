package game

import (
	"math"
	"time"
)

// checkCollisions 躲避模式下检测玩家与任一敌人相交
func (g *Game) checkCollisions() {
	if !g.EvadeMode() {
		return
	}
	start := time.Now()
	player := g.Player()
	for _, e := range g.Enemies() {
		if player.Intersects(e.Pawn) {
			g.GameOver("caught by " + e.Pawn.Name())
			break
		}
	}
	g.metrics.AddTick(time.Since(start).Nanoseconds())
}

// updateScore 刷新对外展示的实时分数
func (g *Game) updateScore() {
	if !g.EvadeMode() {
		return
	}
	g.liveScore.Store(floatBits(g.Score()))
	g.metrics.IncScoreUpdate()
}

// LiveScore 最近一次刷新的分数，不加锁
func (g *Game) LiveScore() float64 {
	return math.Float64frombits(g.liveScore.Load())
}

func floatBits(f float64) uint64 { return math.Float64bits(f) }
