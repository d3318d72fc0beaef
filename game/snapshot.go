package game

import (
	"time"

	"pathmania/arena"
	"pathmania/behavior"
	"pathmania/pawn"
)

// PawnState 广播给客户端的棋子状态
type PawnState struct {
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Heading  float64 `json:"heading"`
	Moving   bool    `json:"moving"`
	Radius   float64 `json:"radius"`
	Behavior string  `json:"behavior,omitempty"`
	Ability  string  `json:"ability,omitempty"`
}

// Snapshot 一帧完整状态
type Snapshot struct {
	Mode    string      `json:"mode"`
	Level   int         `json:"level"`
	Score   float64     `json:"score"`
	Paths   int         `json:"paths"`
	Over    bool        `json:"over"`
	Reason  string      `json:"reason,omitempty"`
	Arena   ArenaState  `json:"arena"`
	Player  *PawnState  `json:"player,omitempty"`
	Enemies []PawnState `json:"enemies"`
}

type ArenaState struct {
	Size       int          `json:"size"`
	CellLength float64      `json:"cellLength"`
	Paths      []arena.Path `json:"paths"`
}

type abilityHolder interface {
	State() behavior.AbilityState
}

func pawnState(p *pawn.Pawn) PawnState {
	pos := p.Position()
	return PawnState{
		Name:    p.Name(),
		X:       pos.X,
		Y:       pos.Y,
		Heading: p.Heading(),
		Moving:  p.IsMoving(),
		Radius:  p.HitboxRadius(),
	}
}

// Snapshot 采集当前状态
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	s := Snapshot{
		Mode:   g.Mode().String(),
		Level:  g.level,
		Score:  g.scoreLocked(time.Now()),
		Paths:  g.paths,
		Over:   g.over,
		Reason: g.outcome.Reason,
	}
	player := g.player
	enemies := append([]*Enemy(nil), g.enemies...)
	g.mu.Unlock()

	s.Arena = ArenaState{
		Size:       g.arena.Size(),
		CellLength: g.arena.CellLength(),
		Paths:      g.arena.Paths(),
	}
	if player != nil {
		ps := pawnState(player)
		s.Player = &ps
	}
	s.Enemies = make([]PawnState, 0, len(enemies))
	for _, e := range enemies {
		ps := pawnState(e.Pawn)
		ps.Behavior = string(e.Behavior.Kind())
		if a, ok := e.Behavior.(abilityHolder); ok {
			ps.Ability = a.State().String()
		}
		s.Enemies = append(s.Enemies, ps)
	}
	return s
}

// Stats 指标快照，附带竞技场与行为的计数
func (g *Game) Stats() map[string]any {
	out := g.metrics.Snapshot()
	out["charts"] = g.arena.Charts()
	var jumps int64
	for _, e := range g.Enemies() {
		if j, ok := e.Behavior.(*behavior.Jumper); ok {
			jumps += j.Jumps()
		}
	}
	out["jumps"] = jumps
	if p := g.Player(); p != nil {
		out["player_moves_dropped"] = p.Dropped()
	}
	return out
}
