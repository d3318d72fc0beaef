package server

import "time"

// StartTicker 启动会话的 Tick 循环：处理输入 → 广播结果
func (s *Session) StartTicker() {
	if !s.tickerStarted.CompareAndSwap(false, true) {
		return
	}
	interval := s.cfg.Server.SnapshotInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
			}
			s.tickSeq.Add(1)
			if !s.ProcessInputs() {
				s.onLeave()
				return
			}
			s.Broadcast()
		}
	}()
}
