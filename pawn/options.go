package pawn

// MoveOptions 单次移动的参数
type MoveOptions struct {
	Path           bool // 移动成功后登记路径（绘制模式）
	ValidatePath   bool
	ValidateBorder bool
	ChangeHeading  bool
	Greedy         bool
	MaxGreedySteps int // <0 不限

	speed     *float64
	turnSpeed *float64
}

// MoveOption 函数式选项
type MoveOption func(*MoveOptions)

func defaultMoveOptions() MoveOptions {
	return MoveOptions{
		ValidatePath:   true,
		ValidateBorder: true,
		ChangeHeading:  true,
		MaxGreedySteps: -1,
	}
}

// WithPath 绘制模式：登记走过的边，同时跳过路径校验
func WithPath() MoveOption {
	return func(o *MoveOptions) {
		o.Path = true
		o.ValidatePath = false
	}
}

// WithoutPathValidation 允许跨越未登记的边（跳跃）
func WithoutPathValidation() MoveOption { return func(o *MoveOptions) { o.ValidatePath = false } }

// WithoutBorderValidation 允许越过边界
func WithoutBorderValidation() MoveOption { return func(o *MoveOptions) { o.ValidateBorder = false } }

// WithHeading 是否先转向再移动
func WithHeading(change bool) MoveOption { return func(o *MoveOptions) { o.ChangeHeading = change } }

// WithSpeed 本次移动临时覆盖移动速度
func WithSpeed(s float64) MoveOption { return func(o *MoveOptions) { o.speed = &s } }

// WithTurnSpeed 本次移动临时覆盖转向速度
func WithTurnSpeed(s float64) MoveOption { return func(o *MoveOptions) { o.turnSpeed = &s } }

// Greedy 沿直线走到不能再走为止，最多 maxSteps 格（<0 不限）
func Greedy(maxSteps int) MoveOption {
	return func(o *MoveOptions) {
		o.Greedy = true
		o.MaxGreedySteps = maxSteps
	}
}

func buildOptions(opts []MoveOption) MoveOptions {
	o := defaultMoveOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
