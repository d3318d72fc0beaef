package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pathmania/game"
	"pathmania/logger"
)

// Handlers HTTP / WebSocket 入口
type Handlers struct {
	mgr *SessionManager
}

func NewHandlers(mgr *SessionManager) *Handlers { return &Handlers{mgr: mgr} }

// session 按 ?session= 查找会话，找不到时写出错误
func (h *Handlers) session(c *gin.Context) (*Session, bool) {
	id := c.Query("session")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session query"})
		return nil, false
	}
	s, ok := h.mgr.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

type adminConfig struct {
	Paths          *int    `json:"paths,omitempty"`
	BehaviorTickMs *int    `json:"behaviorTickMs,omitempty"`
	Level          *int    `json:"level,omitempty"`
	Mode           *string `json:"mode,omitempty"` // 只读
}

// HandleAdminConfig 提供会话配置的读取与更新（热更新基本规则）
// GET /admin/config?session=<id>  返回当前配置
// POST /admin/config?session=<id> 以 JSON 载荷更新部分字段
func (h *Handlers) HandleAdminConfig(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	g := s.Game

	if c.Request.Method == http.MethodGet {
		paths := g.Paths()
		tick := int(g.BehaviorTick() / time.Millisecond)
		lv := g.Level()
		mode := g.Mode().String()
		c.JSON(http.StatusOK, adminConfig{Paths: &paths, BehaviorTickMs: &tick, Level: &lv, Mode: &mode})
		return
	}

	var body adminConfig
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Paths != nil {
		if err := g.SetPaths(*body.Paths); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if body.BehaviorTickMs != nil {
		if err := g.SetBehaviorTick(time.Duration(*body.BehaviorTickMs) * time.Millisecond); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if body.Level != nil {
		if err := g.SetLevel(*body.Level); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, game.ErrGameOver) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
	logger.Log.Infof("config updated: session=%s paths=%d behaviorTick=%v level=%d",
		s.ID, g.Paths(), g.BehaviorTick(), g.Level())
}
