package arena

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"pathmania/geom"
	"pathmania/logger"
)

var (
	// ErrInvalidConfig 尺寸或格长非正
	ErrInvalidConfig = errors.New("arena: invalid configuration")
	// ErrInvalidPath 端点重合或不相邻
	ErrInvalidPath = errors.New("arena: path endpoints must be distinct grid neighbours")
	// ErrUnreachable 起点在当前图中无法到达目标
	ErrUnreachable = errors.New("arena: coordinate unreachable")
)

// GreedyOptions 控制 DestinationGreedy 的行走条件
type GreedyOptions struct {
	MaxSteps   int  // <0 表示不限
	PathBound  bool // 沿已有路径行走
	CoordBound bool // 允许走到任意已访问的相邻坐标
}

// DefaultGreedy 只沿路径、步数不限
var DefaultGreedy = GreedyOptions{MaxSteps: -1, PathBound: true}

// Arena 竞技场：路径集合、已访问坐标集合与两套 BFS 距离缓存。
// 所有方法并发安全；距离表一旦生成就不再修改，重新绘制时整体替换。
type Arena struct {
	mu     sync.RWMutex
	size   int
	cell   float64
	paths  map[Path]struct{}
	coords map[geom.Vec2]struct{}

	pathDist  map[geom.Vec2]DistanceMap
	coordDist map[geom.Vec2]DistanceMap

	charts atomic.Int64
}

// New 创建 size*size 格、每格 cell 长的竞技场，原点预置为已访问坐标
func New(size int, cell float64) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d must be positive", ErrInvalidConfig, size)
	}
	if cell <= 0 || math.IsNaN(cell) || math.IsInf(cell, 0) {
		return nil, fmt.Errorf("%w: cell length %v must be positive", ErrInvalidConfig, cell)
	}
	a := &Arena{size: size, cell: cell}
	a.reset()
	return a, nil
}

func (a *Arena) reset() {
	a.paths = make(map[Path]struct{})
	a.coords = map[geom.Vec2]struct{}{geom.Zero: {}}
	a.pathDist = make(map[geom.Vec2]DistanceMap)
	a.coordDist = make(map[geom.Vec2]DistanceMap)
}

// Reset 清空路径、坐标与缓存，回到只含原点的初始状态
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

// Size 每条边的格数
func (a *Arena) Size() int { return a.size }

// CellLength 一格的边长
func (a *Arena) CellLength() float64 { return a.cell }

// BorderLength 边界边长（格数 * 格长）
func (a *Arena) BorderLength() float64 { return float64(a.size) * a.cell }

// PathCapacity 网格内可放置的路径总数
func (a *Arena) PathCapacity() int { return 2 * a.size * (a.size + 1) }

// NumAvailablePaths 剩余可放置路径数
func (a *Arena) NumAvailablePaths() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.PathCapacity() - len(a.paths)
}

// NumPaths 已登记路径数
func (a *Arena) NumPaths() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.paths)
}

// Charts 累计 BFS 次数（用于指标）
func (a *Arena) Charts() int64 { return a.charts.Load() }

// Destination 从 pos 沿 dir 走一格后的坐标；不做任何校验
func (a *Arena) Destination(pos geom.Vec2, dir geom.Direction) geom.Vec2 {
	return pos.Add(dir.Unit().Scale(a.cell))
}

// Step 同 Destination，但结果吸附到网格；格长不是精确浮点数时用它做集合键
func (a *Arena) Step(pos geom.Vec2, dir geom.Direction) geom.Vec2 {
	return a.Destination(pos.Grid(a.cell), dir).Grid(a.cell)
}

// DestinationGreedy 沿 dir 逐格前进，直到下一格不连通、越界或达到 MaxSteps。
// 返回最远可达的网格坐标与步数；步数为 0 时返回起点本身。
func (a *Arena) DestinationGreedy(pos geom.Vec2, dir geom.Direction, opts GreedyOptions) (geom.Vec2, int) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	prev := pos.Grid(a.cell)
	steps := 0
	for opts.MaxSteps < 0 || steps < opts.MaxSteps {
		next := a.Step(prev, dir)
		connected := (opts.PathBound && a.hasPath(prev, next)) ||
			(opts.CoordBound && a.hasCoord(next))
		if !connected || !a.inBounds(next) {
			break
		}
		prev = next
		steps++
	}
	return prev, steps
}

// PathExists 判断从 pos 沿 dir 是否有已登记路径
func (a *Arena) PathExists(pos geom.Vec2, dir geom.Direction) bool {
	return a.PathExistsBetween(pos, a.Step(pos, dir))
}

// PathExistsBetween 判断 {p, q} 是否为已登记路径
func (a *Arena) PathExistsBetween(p, q geom.Vec2) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hasPath(p.Grid(a.cell), q.Grid(a.cell))
}

// CoordExists 判断 pos 沿 dir 一格的坐标是否已访问
func (a *Arena) CoordExists(pos geom.Vec2, dir geom.Direction) bool {
	return a.CoordExistsAt(a.Step(pos, dir))
}

// CoordExistsAt 判断 c 是否已访问
func (a *Arena) CoordExistsAt(c geom.Vec2) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hasCoord(c.Grid(a.cell))
}

// InBounds 两个轴都在 [-border/2, border/2] 内
func (a *Arena) InBounds(c geom.Vec2) bool { return a.inBounds(c) }

func (a *Arena) inBounds(c geom.Vec2) bool {
	// 容差吸收 k*cell 与 border/2 之间的舍入误差
	half := a.BorderLength()/2 + a.cell*1e-9
	return c.X >= -half && c.X <= half && c.Y >= -half && c.Y <= half
}

func (a *Arena) hasPath(p, q geom.Vec2) bool {
	_, ok := a.paths[NewPath(p, q)]
	return ok
}

func (a *Arena) hasCoord(c geom.Vec2) bool {
	_, ok := a.coords[c]
	return ok
}

// adjacent 两个网格点是否恰好相隔一格（单轴），按格数比较
func (a *Arena) adjacent(p, q geom.Vec2) bool {
	d := p.Sub(q).Abs()
	dx, dy := math.Round(d.X/a.cell), math.Round(d.Y/a.cell)
	return (dx == 1 && dy == 0) || (dx == 0 && dy == 1)
}

// AddPath 登记路径并把两端加入坐标集合；返回是否新建（已存在返回 false）。
// 距离缓存不会自动更新，调用方需重新 Chart。
func (a *Arena) AddPath(p, q geom.Vec2) (bool, error) {
	p, q = p.Grid(a.cell), q.Grid(a.cell)
	if !a.adjacent(p, q) {
		return false, fmt.Errorf("%w: %v-%v", ErrInvalidPath, p, q)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.coords[p] = struct{}{}
	a.coords[q] = struct{}{}
	key := NewPath(p, q)
	if _, ok := a.paths[key]; ok {
		return false, nil
	}
	a.paths[key] = struct{}{}
	return true, nil
}

// AddCoord 把坐标加入已访问集合
func (a *Arena) AddCoord(c geom.Vec2) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.coords[c.Grid(a.cell)] = struct{}{}
}

// Paths 已登记路径（稳定排序）
func (a *Arena) Paths() []Path {
	a.mu.RLock()
	out := make([]Path, 0, len(a.paths))
	for p := range a.paths {
		out = append(out, p)
	}
	a.mu.RUnlock()
	slices.SortFunc(out, func(x, y Path) int {
		if c := compareVec(x.A, y.A); c != 0 {
			return c
		}
		return compareVec(x.B, y.B)
	})
	return out
}

// Coords 已访问坐标（稳定排序）
func (a *Arena) Coords() []geom.Vec2 {
	a.mu.RLock()
	out := make([]geom.Vec2, 0, len(a.coords))
	for c := range a.coords {
		out = append(out, c)
	}
	a.mu.RUnlock()
	slices.SortFunc(out, compareVec)
	return out
}

func (a *Arena) logf(template string, args ...any) {
	logger.Log.Debugf("arena: "+template, args...)
}
