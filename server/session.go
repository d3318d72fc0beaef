package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"pathmania/config"
	"pathmania/game"
	"pathmania/logger"
)

// Session 一个玩家的一局游戏：输入在 Tick 中统一处理，状态按固定间隔广播
type Session struct {
	ID         string
	Player     string
	Difficulty string
	Game       *game.Game

	cfg       *config.Config
	inputChan chan Input
	leaveChan chan struct{}
	stopCh    chan struct{}
	limiter   *rate.Limiter

	mu      sync.Mutex
	conn    *ClientConn
	lastSeq int64

	tickSeq       atomic.Int64
	oldSeqIgnored atomic.Int64
	chanFull      atomic.Int64
	tickerStarted atomic.Bool
	closeOnce     sync.Once
	release       func() // 由管理器设置：离开时从管理器移除
}

func newSession(id, player, difficulty string, cfg *config.Config) *Session {
	return &Session{
		ID:         id,
		Player:     player,
		Difficulty: difficulty,
		cfg:        cfg,
		inputChan:  make(chan Input, 64), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan:  make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		limiter:    rate.NewLimiter(rate.Limit(cfg.Server.InputRate), cfg.Server.InputBurst),
	}
}

// Attach 绑定客户端连接
func (s *Session) Attach(conn *ClientConn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *Session) client() *ClientConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// OnInput 入站输入（不立即执行），超过速率或通道满时丢弃
func (s *Session) OnInput(in Input) bool {
	if !s.limiter.Allow() {
		s.Game.Metrics().IncRateLimited()
		return false
	}
	select {
	case s.inputChan <- in:
		return true
	default:
		// 丢弃：为了实时性，避免背压影响游戏推进
		s.chanFull.Add(1)
		return false
	}
}

// RequestLeave 请求在 Tick 中结束会话
func (s *Session) RequestLeave() {
	select {
	case s.leaveChan <- struct{}{}:
	default:
	}
}

// ProcessInputs 处理当前帧的所有输入（非阻塞 drain）；收到离开请求时返回 false
func (s *Session) ProcessInputs() bool {
	for {
		select {
		case <-s.leaveChan:
			return false
		case in := <-s.inputChan:
			s.apply(in)
		default:
			return true
		}
	}
}

func (s *Session) apply(in Input) {
	s.mu.Lock()
	if in.Seq != 0 && in.Seq <= s.lastSeq {
		s.mu.Unlock()
		s.oldSeqIgnored.Add(1)
		return
	}
	if in.Seq != 0 {
		s.lastSeq = in.Seq
	}
	s.mu.Unlock()

	if in.Start {
		if err := s.Game.BeginLevel(); err != nil {
			logger.Log.Debugf("session %s: start: %v", s.ID, err)
		}
		return
	}
	s.Game.MovePlayer(in.Command, in.Greedy)
}

// Broadcast 把当前状态发给客户端（文本 JSON）
func (s *Session) Broadcast() {
	c := s.client()
	if c == nil {
		return
	}
	payload := struct {
		Type string `json:"type"`
		Tick int64  `json:"tick"`
		game.Snapshot
	}{Type: "state", Tick: s.tickSeq.Load(), Snapshot: s.Game.Snapshot()}
	b, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("session %s: marshal state: %v", s.ID, err)
		return
	}
	c.Enqueue(b)
}

// onGameOver 游戏结束回调：通知客户端
func (s *Session) onGameOver(out game.Outcome) {
	b, _ := json.Marshal(struct {
		Type string `json:"type"`
		game.Outcome
	}{Type: "gameover", Outcome: out})
	if c := s.client(); c != nil {
		c.Enqueue(b)
	}
	logger.Log.Infof("session %s: game over: %s score=%.2f", s.ID, out.Reason, out.Score)
}

func (s *Session) onLeave() {
	if s.release != nil {
		s.release()
		return
	}
	s.Close()
}

// Stats 会话级指标与游戏指标合并
func (s *Session) Stats() map[string]any {
	out := s.Game.Stats()
	out["old_seq_ignored"] = s.oldSeqIgnored.Load()
	out["chan_full_discarded"] = s.chanFull.Load()
	return out
}

// Close 停止广播循环、游戏与连接
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.Game.Close()
		if c := s.client(); c != nil {
			c.Close()
		}
	})
}
