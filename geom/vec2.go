package geom

import (
	"fmt"
	"math"
)

// Vec2 不可变二维向量：所有运算都返回新值
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V 便捷构造
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Zero 原点
var Zero = Vec2{}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale 两个分量按同一系数缩放
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// ScaleXY 分量分别缩放
func (v Vec2) ScaleXY(sx, sy float64) Vec2 { return Vec2{v.X * sx, v.Y * sy} }

// Magnitude 向量长度
func (v Vec2) Magnitude() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Unit 单位向量。前提：v 非零向量（零向量会得到 NaN）
func (v Vec2) Unit() Vec2 {
	m := v.Magnitude()
	return Vec2{v.X / m, v.Y / m}
}

// Distance 两点欧氏距离
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Magnitude() }

// Abs 分量取绝对值
func (v Vec2) Abs() Vec2 { return Vec2{math.Abs(v.X), math.Abs(v.Y)} }

// Grid 吸附到边长为 cell 的网格点
func (v Vec2) Grid(cell float64) Vec2 { return v.GridXY(cell, cell) }

// GridXY 吸附到 cellX*cellY 的网格点。
// 取整规则为 half-away-from-zero（math.Round），±.5 处结果对称：12.5/25 -> 25，-12.5/25 -> -25
func (v Vec2) GridXY(cellX, cellY float64) Vec2 {
	return Vec2{snap(v.X, cellX), snap(v.Y, cellY)}
}

func snap(x, cell float64) float64 {
	r := math.Round(x/cell) * cell
	if r == 0 {
		// 统一 -0 为 0，便于日志与 JSON 输出
		return 0
	}
	return r
}

func (v Vec2) String() string { return fmt.Sprintf("(%g, %g)", v.X, v.Y) }
