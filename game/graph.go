package game

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMap           = errors.New("map has no nodes")
	ErrNeighborOutOfRange = errors.New("neighbor index out of range")
	ErrInvalidDirection   = errors.New("invalid neighbor direction")
	ErrDuplicateNeighbor  = errors.New("direction listed twice")
)

// Node 构造图时传入的节点：坐标 + 各方向邻居下标（缺省表示该方向不通）
type Node struct {
	Pos       Pos
	Neighbors map[Direction]int
}

// node 构造后的只读节点，邻居表按方向平铺，-1 表示无通路
type node struct {
	pos    Pos
	neighs [dirCount]int
}

func (n node) Position() Pos { return n.pos }

// Map 导航图：构造后不可变，节点只通过下标引用，可被多个角色只读共享
type Map struct {
	nodes []node
}

// NewMap 校验并构造导航图。空图、越界邻居、非法方向都属于配置错误。
func NewMap(nodes []Node) (*Map, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyMap
	}
	m := &Map{nodes: make([]node, len(nodes))}
	for i, n := range nodes {
		nd := node{pos: n.Pos}
		for d := range nd.neighs {
			nd.neighs[d] = -1
		}
		for dir, j := range n.Neighbors {
			if !dir.Valid() || dir == DirStop {
				return nil, fmt.Errorf("node %d: %w: %v", i, ErrInvalidDirection, dir)
			}
			if j < 0 || j >= len(nodes) {
				return nil, fmt.Errorf("node %d %s -> %d: %w", i, dir, j, ErrNeighborOutOfRange)
			}
			nd.neighs[dir] = j
		}
		m.nodes[i] = nd
	}
	return m, nil
}

// Len 节点数量
func (m *Map) Len() int { return len(m.nodes) }

// Position 返回节点 i 的坐标
func (m *Map) Position(i int) Pos { return m.nodes[i].pos }

// Distance 节点 i 与 pos 的欧氏距离
func (m *Map) Distance(i int, pos Pos) float64 {
	return Distance(m.nodes[i].pos, pos)
}

// Nearest 返回离 pos 最近的节点下标与距离，并列时取构造顺序靠前者。
// 空图只可能来自未经 NewMap 的零值 Map，属于编程错误。
func (m *Map) Nearest(pos Pos) (int, float64) {
	i, d, ok := Nearest(m.nodes, pos)
	if !ok {
		panic("game: Map.Nearest called on a map without nodes")
	}
	return i, d
}

// Neighbor O(1) 查询节点 i 在 dir 方向的邻居；false 表示不通
func (m *Map) Neighbor(i int, dir Direction) (int, bool) {
	if i < 0 || i >= len(m.nodes) || !dir.Valid() {
		return -1, false
	}
	j := m.nodes[i].neighs[dir]
	return j, j >= 0
}

// Directions 节点 i 的所有可通行方向（按 Up/Down/Left/Right 顺序）
func (m *Map) Directions(i int) []Direction {
	var out []Direction
	for d := DirUp; d < dirCount; d++ {
		if _, ok := m.Neighbor(i, d); ok {
			out = append(out, d)
		}
	}
	return out
}
