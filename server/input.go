package server

import "pacnav/game"

// Input 客户端转向意图，由服务端在 Tick 中校验后作用到玩家角色
type Input struct {
	PlayerID PlayerID
	Command  game.Direction
	Seq      int64 // 客户端本地序列号，用于去重
}

// 入站输入的简单 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"move","command":"up","seq":3}
type InputMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Seq     int64  `json:"seq,omitempty"`
}
