package game

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNilMap       = errors.New("entity has no map")
	ErrBadSpeed     = errors.New("speed must be a non-negative number")
	ErrNodeOutRange = errors.New("node index out of range")
)

// Entity 在导航图上连续移动的角色。
// 关联节点（node >= 0）表示上次 Resync 时位置在吸附阈值内；导航图只读共享。
type Entity struct {
	Name string

	pos   Pos
	dir   Direction
	speed float64
	node  int
	graph *Map
}

// NewEntity 创建未关联节点的角色
func NewEntity(name string, graph *Map, pos Pos, dir Direction, speed float64) (*Entity, error) {
	if graph == nil {
		return nil, fmt.Errorf("entity %q: %w", name, ErrNilMap)
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("entity %q: %w: %v", name, ErrInvalidDirection, dir)
	}
	e := &Entity{Name: name, pos: pos, dir: dir, node: -1, graph: graph}
	if err := e.SetSpeed(speed); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entity) Position() Pos        { return e.pos }
func (e *Entity) Direction() Direction { return e.dir }
func (e *Entity) Speed() float64       { return e.speed }

// Map 角色所在的导航图（只读共享）
func (e *Entity) Map() *Map { return e.graph }

// Node 当前关联的节点；未关联时 ok 为 false
func (e *Entity) Node() (int, bool) { return e.node, e.node >= 0 }

// SetSpeed 每 Tick 移动的距离
func (e *Entity) SetSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return fmt.Errorf("entity %q: %w: %v", e.Name, ErrBadSpeed, speed)
	}
	e.speed = speed
	return nil
}

// Attach 强制关联到节点（例如出生点），不检查距离
func (e *Entity) Attach(node int) error {
	if node < 0 || node >= e.graph.Len() {
		return fmt.Errorf("entity %q attach %d: %w", e.Name, node, ErrNodeOutRange)
	}
	e.node = node
	return nil
}

// ChangeDirection 请求转向：仅在关联节点且该方向有邻居时成功，立即生效于下一次 Advance。
// 关联状态下 Stop 总是允许；失败时状态不变。
func (e *Entity) ChangeDirection(dir Direction) bool {
	if !dir.Valid() || e.node < 0 {
		return false
	}
	if dir != DirStop {
		if _, ok := e.graph.Neighbor(e.node, dir); !ok {
			return false
		}
	}
	e.dir = dir
	return true
}

// Advance 按当前方向与速度推进一个 Tick 的位移
func (e *Entity) Advance() {
	e.pos = e.pos.Add(e.dir.Vector().Scale(e.speed))
}

// Resync 重新计算最近节点：距离严格小于 threshold 时关联，否则解除关联。
// 返回值表示是否关联到了一个新的节点。
func (e *Entity) Resync(threshold float64) bool {
	i, d := e.graph.Nearest(e.pos)
	if d < threshold {
		changed := e.node != i
		e.node = i
		return changed
	}
	e.node = -1
	return false
}
