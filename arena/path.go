package arena

import (
	"cmp"

	"pathmania/geom"
)

// Path 连接两个相邻坐标的无向边；端点按 (X,Y) 排序存储，保证 {A,B} == {B,A}
type Path struct {
	A geom.Vec2 `json:"a"`
	B geom.Vec2 `json:"b"`
}

// NewPath 构造规范化的边
func NewPath(a, b geom.Vec2) Path {
	if compareVec(a, b) > 0 {
		a, b = b, a
	}
	return Path{A: a, B: b}
}

// Has 判断 c 是否为端点
func (p Path) Has(c geom.Vec2) bool { return p.A == c || p.B == c }

// Other 返回另一端点
func (p Path) Other(c geom.Vec2) geom.Vec2 {
	if p.A == c {
		return p.B
	}
	return p.A
}

func compareVec(a, b geom.Vec2) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}
