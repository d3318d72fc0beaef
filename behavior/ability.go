package behavior

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrInvalidInitialState 能力不能以 CHARGING 状态初始化
var ErrInvalidInitialState = errors.New("behavior: ability cannot start in CHARGING state")

// ErrNoScheduler 充能需要定时器
var ErrNoScheduler = errors.New("behavior: ability charge needs a scheduler")

// AbilityState 能力充能状态
type AbilityState int

const (
	Ready AbilityState = iota
	Charging
	Used
)

func (s AbilityState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Charging:
		return "charging"
	case Used:
		return "used"
	}
	return fmt.Sprintf("AbilityState(%d)", int(s))
}

// ParseAbilityState 解析 "ready"/"charging"/"used"（大小写不敏感）
func ParseAbilityState(s string) (AbilityState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ready":
		return Ready, nil
	case "charging":
		return Charging, nil
	case "used":
		return Used, nil
	}
	return Ready, fmt.Errorf("behavior: unknown ability state %q", s)
}

// Delayer 一次性定时回调（由调度器实现）
type Delayer interface {
	After(name string, d time.Duration, fn func())
}

// Ability 可充能能力：READY --Charge--> CHARGING --计时结束--> READY；
// Use 只是打上 USED 标记，冷却从显式 Charge 开始。
type Ability struct {
	mu         sync.Mutex
	state      AbilityState
	chargeTime time.Duration
	timer      string
	onChange   func(AbilityState)
}

// NewAbility 创建能力；initial 为 Charging 时返回 ErrInvalidInitialState
func NewAbility(chargeTime time.Duration, initial AbilityState) (*Ability, error) {
	if initial == Charging {
		return nil, ErrInvalidInitialState
	}
	if initial != Ready && initial != Used {
		return nil, fmt.Errorf("behavior: invalid ability state %d", int(initial))
	}
	if chargeTime < 0 {
		return nil, fmt.Errorf("behavior: negative charge time %v", chargeTime)
	}
	return &Ability{state: initial, chargeTime: chargeTime, timer: "ability"}, nil
}

// ChargeTime 冷却时长
func (a *Ability) ChargeTime() time.Duration { return a.chargeTime }

// OnChange 注册状态变化回调（如通知渲染层改颜色）
func (a *Ability) OnChange(fn func(AbilityState)) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

func (a *Ability) set(s AbilityState) {
	a.mu.Lock()
	a.state = s
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// State 当前状态
func (a *Ability) State() AbilityState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Ability) IsReady() bool    { return a.State() == Ready }
func (a *Ability) IsCharging() bool { return a.State() == Charging }
func (a *Ability) IsUsed() bool     { return a.State() == Used }

// Use 标记能力已使用
func (a *Ability) Use() { a.set(Used) }

// Charge 进入 CHARGING，chargeTime 后自动回到 READY；不支持取消
func (a *Ability) Charge(d Delayer) error {
	if d == nil {
		return ErrNoScheduler
	}
	a.set(Charging)
	d.After(a.timer, a.chargeTime, a.Recharge)
	return nil
}

// Recharge 立即回到 READY
func (a *Ability) Recharge() { a.set(Ready) }
