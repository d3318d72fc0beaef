package server

import (
	"encoding/json"
	"strings"

	"pathmania/geom"
)

// Input 客户端输入（意图），由会话在 Tick 中解释并驱动游戏
type Input struct {
	Start   bool // 提前开始关卡
	Command geom.Direction
	Greedy  bool
	Seq     int64 // 客户端本地序列号，用于去重
}

// 入站输入的简单 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"move","command":"up","greedy":true}、{"type":"start"}
type InputMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Greedy  bool   `json:"greedy,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
}

// ParseInput 解析一条文本消息；无法识别时 ok=false
func ParseInput(payload []byte) (Input, bool) {
	var im InputMessage
	if err := json.Unmarshal(payload, &im); err != nil {
		return Input{}, false
	}
	switch strings.ToLower(im.Type) {
	case "start":
		return Input{Start: true, Seq: im.Seq}, true
	case "move":
		dir, ok := geom.ParseDirection(im.Command)
		if !ok {
			return Input{}, false
		}
		return Input{Command: dir, Greedy: im.Greedy, Seq: im.Seq}, true
	}
	return Input{}, false
}
