package game

import (
	"fmt"
	"math/rand/v2"

	"pathmania/behavior"
	"pathmania/geom"
	"pathmania/level"
	"pathmania/pawn"
)

// spawnLocked 按关卡配置生成一个敌人并注册它的行为任务
func (g *Game) spawnLocked(lv, idx int, s level.Spawn) error {
	var target *pawn.Pawn
	if s.Targets() {
		target = g.player
	}
	kind := s.Kind()
	cooldown := s.Cooldown()
	if cooldown <= 0 {
		cooldown = g.cfg.JumperCooldown
	}
	b, err := behavior.New(kind, target, cooldown)
	if err != nil {
		return err
	}

	p, err := pawn.New(g, pawn.Config{
		Name:         fmt.Sprintf("%s-%d-%d", kind, lv, idx),
		Pos:          g.spawnPos(s.Pos),
		Speed:        s.SpeedOr(g.cfg.EnemySpeed),
		TurnSpeed:    s.TurnSpeed,
		HitboxRadius: s.Radius(),
		Headingless:  s.Headingless,
		Tick:         g.cfg.TickInterval(),
	})
	if err != nil {
		return err
	}
	b.Attach(p, g)
	p.Start(g.ctx)

	e := &Enemy{Pawn: p, Behavior: b, task: "behavior/" + p.Name()}
	g.enemies = append(g.enemies, e)
	g.scheduleLocked(e)
	g.log.Debugf("spawned %s at %v speed=%v", p.Name(), p.Position(), p.Speed())
	return nil
}

// spawnPos 随机出生点从已访问坐标中选
func (g *Game) spawnPos(pos level.Position) geom.Vec2 {
	if !pos.Random {
		return pos.At.Grid(g.arena.CellLength())
	}
	coords := g.arena.Coords()
	if len(coords) == 0 {
		return geom.Zero
	}
	var i int
	if g.rng != nil {
		i = g.rng.IntN(len(coords))
	} else {
		i = rand.IntN(len(coords))
	}
	return coords[i]
}

func (g *Game) scheduleLocked(e *Enemy) {
	b := e.Behavior
	g.sched.AddTicker(e.task, g.behaviorTick, func() {
		if !g.EvadeMode() {
			return
		}
		g.metrics.IncBehaviorTick()
		b.Enact()
	})
}
