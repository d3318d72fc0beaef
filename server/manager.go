package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pathmania/arena"
	"pathmania/config"
	"pathmania/game"
	"pathmania/leaderboard"
	"pathmania/level"
	"pathmania/logger"
	"pathmania/scheduler"
)

// SessionManager 管理所有单人会话的生命周期，每个会话独占一局游戏
type SessionManager struct {
	cfg    *config.Config
	levels *level.Table
	board  *leaderboard.Board

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager board 可为 nil（不记录分数）
func NewSessionManager(cfg *config.Config, levels *level.Table, board *leaderboard.Board) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		levels:   levels,
		board:    board,
		sessions: make(map[string]*Session),
	}
}

func (m *SessionManager) Config() *config.Config          { return m.cfg }
func (m *SessionManager) Leaderboard() *leaderboard.Board { return m.board }

// Create 按难度创建会话并启动游戏与广播循环
func (m *SessionManager) Create(player, difficulty string) (*Session, error) {
	cfg, name, err := m.cfg.WithDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	ar, err := arena.New(cfg.Arena.Size, cfg.Arena.CellLength)
	if err != nil {
		return nil, err
	}

	s := newSession(uuid.NewString(), leaderboard.Sanitize(player), name, cfg)
	s.release = func() { m.Remove(s.ID) }
	opts := []game.Option{game.OnGameOver(s.onGameOver)}
	if m.board != nil {
		opts = append(opts, game.WithLeaderboard(m.board, s.Player, config.DifficultyCode(name)))
	}
	g, err := game.New(cfg.Game, ar, scheduler.New(), m.levels, opts...)
	if err != nil {
		return nil, fmt.Errorf("server: new game: %w", err)
	}
	s.Game = g
	if err := g.Start(); err != nil {
		g.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	s.StartTicker()
	logger.Log.Infof("session created: id=%s player=%s difficulty=%s", s.ID, s.Player, name)
	return s, nil
}

// Get 按 ID 查找会话
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove 关闭并移除会话
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
		logger.Log.Infof("session removed: id=%s", id)
	}
}

// List 当前会话（按 ID 排序）
func (m *SessionManager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseAll 关闭全部会话（进程退出时）
func (m *SessionManager) CloseAll() {
	for _, s := range m.List() {
		m.Remove(s.ID)
	}
}
