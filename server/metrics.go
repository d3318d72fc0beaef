package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pathmania/config"
	"pathmania/leaderboard"
)

// HandleMetrics 输出指定会话的运行指标
// GET /metrics?session=<id>
func (h *Handlers) HandleMetrics(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": s.ID,
		"tick":    s.tickSeq.Load(),
		"metrics": s.Stats(),
	})
}

// HandleSessions 列出当前会话
func (h *Handlers) HandleSessions(c *gin.Context) {
	list := h.mgr.List()
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, gin.H{
			"id":         s.ID,
			"player":     s.Player,
			"difficulty": s.Difficulty,
			"mode":       s.Game.Mode().String(),
			"level":      s.Game.Level(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// HandleLeaderboard 排行榜
// GET /leaderboard?difficulty=normal&limit=10
func (h *Handlers) HandleLeaderboard(c *gin.Context) {
	board := h.mgr.Leaderboard()
	if board == nil {
		c.JSON(http.StatusOK, []leaderboard.Record{})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	var code byte
	if d := c.Query("difficulty"); d != "" {
		code = config.DifficultyCode(d)
	}
	recs, err := board.Top(code, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []leaderboard.Record{}
	}
	c.JSON(http.StatusOK, recs)
}
