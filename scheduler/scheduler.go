package scheduler

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"pathmania/logger"
)

// TaskFn 定时任务
type TaskFn func()

// Scheduler 管理命名的周期任务与一次性延迟任务。
// 任务 panic 会被恢复并记录，不会影响其他任务。
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]chan struct{}
	timers  map[string]*time.Timer
	stopCh  chan struct{}
	stopped bool
	log     *zap.SugaredLogger
}

// New 创建调度器
func New() *Scheduler {
	return &Scheduler{
		tickers: make(map[string]chan struct{}),
		timers:  make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
		log:     logger.Named("scheduler"),
	}
}

// AddTicker 以固定间隔执行 fn；同名任务会被替换。
// 每次触发都不等待上一次任务之外的任何东西，任务本身应当非阻塞。
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if old, ok := s.tickers[name]; ok {
		close(old)
	}
	stop := make(chan struct{})
	s.tickers[name] = stop

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.run(name, fn)
			case <-stop:
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	s.log.Debugw("ticker registered", "name", name, "interval", interval)
}

// AddDelay 在 delay 后执行一次 fn；同名的未触发任务会被替换
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if old, ok := s.timers[name]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[name] == t {
			delete(s.timers, name)
		}
		s.mu.Unlock()
		s.run(name, fn)
	})
	s.timers[name] = t
}

func (s *Scheduler) run(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("scheduled task panicked", "task", name, "recover", r)
		}
	}()
	fn()
}

// Remove 停止并移除同名的周期任务或延迟任务
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.tickers[name]; ok {
		close(stop)
		delete(s.tickers, name)
	}
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// Stop 停止全部任务；之后的注册被忽略
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
	s.tickers = make(map[string]chan struct{})
}

// Tickers 当前注册的周期任务名（排序）
func (s *Scheduler) Tickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pending 是否有同名延迟任务尚未触发
func (s *Scheduler) Pending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[name]
	return ok
}
