package game

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// DefaultSnapThreshold 角色与节点距离小于该值视为位于节点上
	DefaultSnapThreshold = 3.0
	// DefaultPickupThreshold 玩家与豆子距离小于该值即吃掉
	DefaultPickupThreshold = 8.0
)

var (
	ErrNoEntities      = errors.New("world has no entities")
	ErrNilEntity       = errors.New("nil entity")
	ErrPlayerOutRange  = errors.New("player index out of range")
	ErrDuplicateEntity = errors.New("duplicate entity name")
	ErrBadThreshold    = errors.New("threshold must be positive")
)

// Rules 世界规则；零值字段使用默认值
type Rules struct {
	SnapThreshold   float64
	PickupThreshold float64
	HighScore       int
	Logger          *zap.SugaredLogger
}

// World 单线程推进的模拟状态：角色、豆子与记分，由外层（房间）独占
type World struct {
	entities []*Entity
	player   int
	dots     *DotMap
	score    Score
	tick     uint64

	snap   float64
	pickup float64
	log    *zap.SugaredLogger
}

// TickResult 一个 Tick 的可观察结果
type TickResult struct {
	Tick       uint64    `json:"tick"`
	Requested  Direction `json:"requested"`
	Attempted  bool      `json:"attempted"`
	Accepted   bool      `json:"accepted"`
	Eaten      []Dot     `json:"eaten,omitempty"`
	ScoreDelta int       `json:"delta"`
	Score      Score     `json:"score"`
}

// EntityState 渲染用的角色只读状态；Node 为 -1 表示未关联
type EntityState struct {
	Name string    `json:"name"`
	Pos  Pos       `json:"pos"`
	Dir  Direction `json:"dir"`
	Node int       `json:"node"`
}

// Snapshot Tick 完成后的完整只读快照
type Snapshot struct {
	Tick     uint64        `json:"tick"`
	Entities []EntityState `json:"entities"`
	Dots     []Dot         `json:"dots"`
	Score    Score         `json:"score"`
}

// NewWorld 组装世界；player 为 entities 中由输入驱动、会吃豆子的角色下标
func NewWorld(dots *DotMap, entities []*Entity, player int, rules Rules) (*World, error) {
	if len(entities) == 0 {
		return nil, ErrNoEntities
	}
	if player < 0 || player >= len(entities) {
		return nil, fmt.Errorf("player %d of %d: %w", player, len(entities), ErrPlayerOutRange)
	}
	names := make(map[string]struct{}, len(entities))
	for i, e := range entities {
		if e == nil {
			return nil, fmt.Errorf("entity %d: %w", i, ErrNilEntity)
		}
		if _, dup := names[e.Name]; dup {
			return nil, fmt.Errorf("%q: %w", e.Name, ErrDuplicateEntity)
		}
		names[e.Name] = struct{}{}
	}
	if rules.SnapThreshold == 0 {
		rules.SnapThreshold = DefaultSnapThreshold
	}
	if rules.PickupThreshold == 0 {
		rules.PickupThreshold = DefaultPickupThreshold
	}
	if !(rules.SnapThreshold > 0) || !(rules.PickupThreshold > 0) {
		return nil, ErrBadThreshold
	}
	if rules.Logger == nil {
		rules.Logger = zap.NewNop().Sugar()
	}
	if dots == nil {
		dots = &DotMap{}
	}
	return &World{
		entities: entities,
		player:   player,
		dots:     dots,
		score:    Score{High: rules.HighScore},
		snap:     rules.SnapThreshold,
		pickup:   rules.PickupThreshold,
		log:      rules.Logger,
	}, nil
}

// Player 由输入驱动的角色
func (w *World) Player() *Entity { return w.entities[w.player] }

// Entity 按名称查找角色
func (w *World) Entity(name string) (*Entity, bool) {
	for _, e := range w.entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (w *World) Score() Score  { return w.score }
func (w *World) Dots() *DotMap { return w.dots }

// Tick 按固定顺序推进一步：转向 → 移动并重新吸附 → 玩家吃豆 → 结果。
// req 为 DirNone 表示本 Tick 没有输入；DirStop 是一次真实的停下请求。
func (w *World) Tick(req Direction) TickResult {
	w.tick++
	res := TickResult{Tick: w.tick, Requested: req}

	res.Attempted, res.Accepted = w.applyRequest(req)
	w.moveAll()
	if dot, ok := w.consume(); ok {
		res.Eaten = append(res.Eaten, dot)
		res.ScoreDelta += dot.Score
	}
	res.Score = w.score
	return res
}

func (w *World) applyRequest(req Direction) (attempted, accepted bool) {
	if req == DirNone {
		return false, false
	}
	p := w.Player()
	if !p.ChangeDirection(req) {
		w.log.Debugw("direction rejected", "entity", p.Name, "dir", req)
		return true, false
	}
	return true, true
}

func (w *World) moveAll() {
	for _, e := range w.entities {
		e.Advance()
		if e.Resync(w.snap) {
			n, _ := e.Node()
			w.log.Infow("entity node changed",
				"entity", e.Name,
				"node", n,
				"exits", e.graph.Directions(n),
			)
		}
	}
}

// consume 只对玩家检查一次
func (w *World) consume() (Dot, bool) {
	dot, ok := w.dots.Consume(w.Player().Position(), w.pickup)
	if ok {
		w.score.Add(dot.Score)
	}
	return dot, ok
}

// Snapshot 拷贝当前状态，供渲染/记分板读取
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Tick:     w.tick,
		Entities: make([]EntityState, len(w.entities)),
		Dots:     w.dots.Dots(),
		Score:    w.score,
	}
	for i, e := range w.entities {
		s.Entities[i] = e.State()
	}
	return s
}

// State 角色的只读状态
func (e *Entity) State() EntityState {
	return EntityState{Name: e.Name, Pos: e.pos, Dir: e.dir, Node: e.node}
}
