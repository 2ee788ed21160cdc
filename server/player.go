package server

import "pacnav/game"

// PlayerID 表示连接到房间的客户端唯一标识
type PlayerID string

// Player 房间内的一个客户端：可以发送转向请求，接收每 Tick 的状态
type Player struct {
	ID      PlayerID
	LastSeq int64 // 已处理的最大输入序列号

	Conn *ClientConn // 网络连接的发送端（写协程）
}

// initMessage 加入房间时下发的完整快照
type initMessage struct {
	Type  string        `json:"type"`
	Room  string        `json:"room"`
	Nodes []game.Pos    `json:"nodes"` // 玩家导航图的节点坐标
	State game.Snapshot `json:"state"`
}

// turnResult 本 Tick 的转向结果，仅在有请求时出现
type turnResult struct {
	Dir      game.Direction `json:"dir"`
	Accepted bool           `json:"accepted"`
}

// stateMessage 每 Tick 广播的增量：角色状态、本 Tick 被吃掉的豆子 ID 与记分
type stateMessage struct {
	Type     string             `json:"type"`
	Tick     uint64             `json:"tick"`
	Entities []game.EntityState `json:"entities"`
	Eaten    []int              `json:"eaten,omitempty"`
	Delta    int                `json:"delta"`
	Score    game.Score         `json:"score"`
	Turn     *turnResult        `json:"turn,omitempty"`
}
