package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"pacnav/game"
)

// leaveRequest 只移除仍然绑定该连接的玩家，避免同 ID 重连后被旧连接误删
type leaveRequest struct {
	pid  PlayerID
	conn *ClientConn
}

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进。
// mu 保证一次 Tick 完整结束前，快照读取、加入与管理接口都看不到中间状态。
type Room struct {
	ID string

	mu        sync.Mutex
	Players   map[PlayerID]*Player
	world     *game.World
	inputChan chan Input
	leaveChan chan leaveRequest

	// 本 Tick 待应用的转向请求（最多一个，后到的覆盖先到的）
	pending game.Direction
	paused  bool
	tickSeq uint64

	tickRate      int
	tickerStarted bool
	stop          func()
	stopOnce      sync.Once
	done          chan struct{} // Stop 后关闭，此后不再有人消费 leaveChan

	metrics *RoomMetrics
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, world *game.World, tickRate int) *Room {
	if tickRate <= 0 {
		tickRate = TicksPerSecond
	}
	return &Room{
		ID:        id,
		Players:   make(map[PlayerID]*Player),
		world:     world,
		inputChan: make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan: make(chan leaveRequest, 64),
		done:      make(chan struct{}),
		tickRate:  tickRate,
		metrics:   &RoomMetrics{},
	}
}

// JoinPlayer 将客户端加入房间并下发完整快照；同 ID 重复加入时替换旧连接
func (r *Room) JoinPlayer(id PlayerID, conn *ClientConn) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.Players[id]; ok && old.Conn != nil && old.Conn != conn {
		old.Conn.Close()
	}
	p := &Player{ID: id, Conn: conn}
	r.Players[id] = p

	if conn != nil {
		b, err := json.Marshal(initMessage{
			Type:  "init",
			Room:  r.ID,
			Nodes: nodePositions(r.world.Player().Map()),
			State: r.world.Snapshot(),
		})
		if err != nil {
			Log.Errorw("marshal init", "room", r.ID, "err", err)
		} else {
			conn.Enqueue(b)
		}
	}
	Log.Infow("player joined", "room", r.ID, "player", id, "players", len(r.Players))
	return p
}

// nodePositions 导航图节点坐标，按下标排列，供客户端绘制调试叠加层
func nodePositions(m *game.Map) []game.Pos {
	out := make([]game.Pos, m.Len())
	for i := range out {
		out[i] = m.Position(i)
	}
	return out
}

// LeavePlayer 将玩家移出房间（Tick 线程内调用）
func (r *Room) LeavePlayer(id PlayerID, conn *ClientConn) {
	p, ok := r.Players[id]
	if !ok || (conn != nil && p.Conn != conn) {
		return
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.Players, id)
	Log.Infow("player left", "room", r.ID, "player", id)
}

// OnInput 入站输入（不立即改变状态），仅记录意图，等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	select {
	case r.inputChan <- in:
	default:
		// 丢弃：为了实时性，避免背压影响世界推进
		r.metrics.IncChanFullDiscarded()
	}
}

// RequestLeave 请求在 Tick 线程中移除玩家，避免并发改动房间状态。
// 房间运行期间阻塞写入保证移除生效；房间停止后直接返回。
func (r *Room) RequestLeave(pid PlayerID, conn *ClientConn) {
	select {
	case r.leaveChan <- leaveRequest{pid: pid, conn: conn}:
	case <-r.done:
	}
}

// BeginTick 重置帧内状态
func (r *Room) BeginTick() {
	r.pending = game.DirNone
}

// ProcessInputs 处理当前帧的所有输入（非阻塞 drain）。
// 同一帧内只保留最后一个有效转向请求，其余计为限流。
func (r *Room) ProcessInputs() {
	for {
		select {
		case lr := <-r.leaveChan:
			r.LeavePlayer(lr.pid, lr.conn)
		case in := <-r.inputChan:
			r.acceptInput(in)
		default:
			return
		}
	}
}

func (r *Room) acceptInput(in Input) {
	p, ok := r.Players[in.PlayerID]
	if !ok {
		return
	}
	if in.Seq > 0 {
		if in.Seq <= p.LastSeq {
			r.metrics.IncOldSeqIgnored()
			return
		}
		p.LastSeq = in.Seq
	}
	if !in.Command.Valid() {
		return
	}
	if r.pending != game.DirNone {
		r.metrics.IncRateLimited()
	}
	r.pending = in.Command
	r.metrics.IncAccepted()
}

// UpdateWorld 推进一个 Tick；暂停时世界不动，返回 false
func (r *Room) UpdateWorld() (game.TickResult, bool) {
	if r.paused {
		return game.TickResult{}, false
	}
	res := r.world.Tick(r.pending)
	r.tickSeq = res.Tick
	if res.Attempted && !res.Accepted {
		r.metrics.IncDirectionRejected()
	}
	for _, d := range res.Eaten {
		r.metrics.IncDotsEaten()
		Log.Debugw("dot eaten", "room", r.ID, "dot", d.ID, "score", d.Score, "total", res.Score.Player)
	}
	return res, true
}

// BroadcastDelta 将本 Tick 的增量广播给所有客户端（文本 JSON）
func (r *Room) BroadcastDelta(res game.TickResult) {
	if len(r.Players) == 0 {
		return
	}
	snap := r.world.Snapshot()
	msg := stateMessage{
		Type:     "state",
		Tick:     res.Tick,
		Entities: snap.Entities,
		Delta:    res.ScoreDelta,
		Score:    res.Score,
	}
	for _, d := range res.Eaten {
		msg.Eaten = append(msg.Eaten, d.ID)
	}
	if res.Attempted {
		msg.Turn = &turnResult{Dir: res.Requested, Accepted: res.Accepted}
	}

	b, err := json.Marshal(msg)
	if err != nil {
		Log.Errorw("marshal state", "room", r.ID, "err", err)
		return
	}
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Enqueue(b)
		}
	}
}

// Snapshot 读取已完成 Tick 的快照
func (r *Room) Snapshot() game.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Snapshot()
}

// RoomSettings 可热更新的房间参数
type RoomSettings struct {
	Step   *float64 `json:"step,omitempty"` // 玩家每 Tick 移动距离
	Paused *bool    `json:"paused,omitempty"`
}

// Settings 返回当前参数
func (r *Room) Settings() RoomSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	step := r.world.Player().Speed()
	paused := r.paused
	return RoomSettings{Step: &step, Paused: &paused}
}

// Configure 在两个 Tick 之间应用参数；任一字段非法时不做任何修改
func (r *Room) Configure(s RoomSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player := r.world.Player()
	if s.Step != nil {
		old := player.Speed()
		if err := player.SetSpeed(*s.Step); err != nil {
			return fmt.Errorf("step: %w", err)
		}
		Log.Infow("config updated", "room", r.ID, "step", *s.Step, "old", old)
	}
	if s.Paused != nil {
		r.paused = *s.Paused
		Log.Infow("config updated", "room", r.ID, "paused", r.paused)
	}
	return nil
}

// TickSeq 已完成的 Tick 序号
func (r *Room) TickSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickSeq
}
