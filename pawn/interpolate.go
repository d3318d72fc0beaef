package pawn

import (
	"math"

	"pathmania/geom"
)

// InterpolateVec 以每 tick speed 的步长从 pos 走向 dest，返回途经点；最后一个必为 dest。
// speed <= 0 表示瞬移。
func InterpolateVec(pos, dest geom.Vec2, speed float64) []geom.Vec2 {
	diff := dest.Sub(pos)
	distance := diff.Magnitude()
	if speed <= 0 || distance == 0 {
		return []geom.Vec2{dest}
	}

	step := diff.Unit().Scale(speed)
	out := make([]geom.Vec2, 0, int(distance/speed)+1)
	for offset := step; offset.Magnitude() < distance; offset = offset.Add(step) {
		out = append(out, pos.Add(offset))
	}
	return append(out, dest)
}

// InterpolateDeg 从 start 转到 end，取较短的旋转方向；两个方向等长时顺时针。
// 最后一个值必为 end。speed <= 0 表示瞬间转向。
func InterpolateDeg(start, end, speed float64) []float64 {
	start, end = normDeg(start), normDeg(end)
	if start == end || speed <= 0 {
		return []float64{end}
	}

	ccw := normDeg(end - start) // 逆时针距离
	cw := 360 - ccw
	sign, dist := -1.0, cw
	if ccw < cw {
		sign, dist = 1.0, ccw
	}

	var out []float64
	for traveled := speed; traveled < dist; traveled += speed {
		out = append(out, normDeg(start+sign*traveled))
	}
	return append(out, end)
}

func normDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
