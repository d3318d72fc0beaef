package arena

import (
	"fmt"
	"sort"

	"pathmania/geom"
)

// DistanceMap 坐标 -> 到目标的跳数
type DistanceMap map[geom.Vec2]int

// Option 一个可选移动方向及其邻格到目标的距离
type Option struct {
	Direction geom.Direction `json:"direction"`
	Distance  int            `json:"distance"`
}

// ClearDistances 丢弃两套距离缓存
func (a *Arena) ClearDistances() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pathDist = make(map[geom.Vec2]DistanceMap)
	a.coordDist = make(map[geom.Vec2]DistanceMap)
}

// ChartDistances 以 target 为源做 BFS，覆盖（而非合并）该目标的已有距离表
func (a *Arena) ChartDistances(target geom.Vec2, ignorePaths bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chartLocked(target.Grid(a.cell), ignorePaths)
}

// ChartAllDistances 为每个已访问坐标绘制两种距离表；一轮路径定稿后调用
func (a *Arena) ChartAllDistances() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for c := range a.coords {
		a.chartLocked(c, false)
		a.chartLocked(c, true)
	}
	a.logf("charted %d targets", len(a.coords))
}

func (a *Arena) cache(ignorePaths bool) map[geom.Vec2]DistanceMap {
	if ignorePaths {
		return a.coordDist
	}
	return a.pathDist
}

// chartLocked 显式 FIFO 队列的迭代 BFS；调用方持有写锁
func (a *Arena) chartLocked(target geom.Vec2, ignorePaths bool) DistanceMap {
	dist := DistanceMap{target: 0}
	queue := []geom.Vec2{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range geom.Directions {
			next := a.Step(cur, d)
			if _, seen := dist[next]; seen {
				continue
			}
			if (ignorePaths && a.hasCoord(next)) || a.hasPath(cur, next) {
				dist[next] = dist[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	a.cache(ignorePaths)[target] = dist
	a.charts.Add(1)
	return dist
}

// distances 返回目标的距离表，缺失时惰性绘制
func (a *Arena) distances(target geom.Vec2, ignorePaths bool) DistanceMap {
	a.mu.RLock()
	dm, ok := a.cache(ignorePaths)[target]
	a.mu.RUnlock()
	if ok {
		return dm
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if dm, ok = a.cache(ignorePaths)[target]; ok {
		return dm
	}
	return a.chartLocked(target, ignorePaths)
}

// Distances 返回目标距离表的副本；未绘制时返回 false
func (a *Arena) Distances(target geom.Vec2, ignorePaths bool) (DistanceMap, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	dm, ok := a.cache(ignorePaths)[target.Grid(a.cell)]
	if !ok {
		return nil, false
	}
	out := make(DistanceMap, len(dm))
	for k, v := range dm {
		out[k] = v
	}
	return out, true
}

// ChartedDistance start 到 goal 的跳数；缺表时惰性绘制，不可达返回 ErrUnreachable
func (a *Arena) ChartedDistance(start, goal geom.Vec2, ignorePaths bool) (int, error) {
	start, goal = start.Grid(a.cell), goal.Grid(a.cell)
	d, ok := a.distances(goal, ignorePaths)[start]
	if !ok {
		return 0, fmt.Errorf("%w: %v -> %v", ErrUnreachable, start, goal)
	}
	return d, nil
}

// MovementOptions 列出 start 处所有可走方向及邻格到 target 的距离，按距离升序稳定排序
// （平局按 N,S,E,W）。下标 0 即最优方向；没有可走邻格时返回空切片。
// 邻格可走但到不了 target 的方向会被跳过。
func (a *Arena) MovementOptions(start, target geom.Vec2, ignorePaths bool) []Option {
	start, target = start.Grid(a.cell), target.Grid(a.cell)
	dm := a.distances(target, ignorePaths)

	a.mu.RLock()
	defer a.mu.RUnlock()
	opts := make([]Option, 0, len(geom.Directions))
	for _, d := range geom.Directions {
		next := a.Step(start, d)
		if !a.hasPath(start, next) && !(ignorePaths && a.hasCoord(next)) {
			continue
		}
		dist, ok := dm[next]
		if !ok {
			a.logf("skip %v from %v: no route to %v", d, start, target)
			continue
		}
		opts = append(opts, Option{Direction: d, Distance: dist})
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Distance < opts[j].Distance })
	return opts
}
