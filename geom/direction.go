package geom

import (
	"fmt"
	"strings"
)

// Direction 四个移动方向；枚举顺序 N,S,E,W 同时是平局时的优先顺序
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions 按枚举顺序列出全部方向
var Directions = [...]Direction{North, South, East, West}

// Heading 方向对应的朝向角（度）：E=0, N=90, W=180, S=270
func (d Direction) Heading() float64 {
	switch d {
	case North:
		return 90
	case South:
		return 270
	case West:
		return 180
	default:
		return 0
	}
}

// Unit 方向在网格上的单位位移（y 轴向北为正）
func (d Direction) Unit() Vec2 {
	switch d {
	case North:
		return Vec2{0, 1}
	case South:
		return Vec2{0, -1}
	case West:
		return Vec2{-1, 0}
	default:
		return Vec2{1, 0}
	}
}

// Opposite 反方向
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

func (d Direction) Valid() bool { return d >= North && d <= West }

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection 解析客户端命令：up/down/left/right、north/south/east/west 全称，
// 单字母只接受 WASD
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "north", "w":
		return North, true
	case "down", "south", "s":
		return South, true
	case "right", "east", "d":
		return East, true
	case "left", "west", "a":
		return West, true
	}
	return North, false
}
