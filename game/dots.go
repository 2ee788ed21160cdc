package game

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateDot = errors.New("duplicate dot position")
	ErrNegativeDot  = errors.New("negative dot score")
)

// Dot 可被吃掉的豆子。ID 为构造顺序下标，作为逻辑身份永不复用。
type Dot struct {
	ID    int `json:"id"`
	Pos   Pos `json:"pos"`
	Score int `json:"score"`
}

func (d Dot) Position() Pos { return d.Pos }

// DotMap 豆子索引，只能通过 Consume 缩小
type DotMap struct {
	dots []Dot
}

// NewDotMap 按传入顺序分配 ID；同一坐标出现两次视为配置错误。空集合合法。
func NewDotMap(dots []Dot) (*DotMap, error) {
	seen := make(map[Pos]int, len(dots))
	m := &DotMap{dots: make([]Dot, 0, len(dots))}
	for i, d := range dots {
		if d.Score < 0 {
			return nil, fmt.Errorf("dot %d: %w", i, ErrNegativeDot)
		}
		if j, ok := seen[d.Pos]; ok {
			return nil, fmt.Errorf("dot %d at (%g,%g) repeats dot %d: %w", i, d.Pos.X, d.Pos.Y, j, ErrDuplicateDot)
		}
		seen[d.Pos] = i
		d.ID = i
		m.dots = append(m.dots, d)
	}
	return m, nil
}

// Len 剩余豆子数
func (m *DotMap) Len() int { return len(m.dots) }

// Dots 返回剩余豆子的副本
func (m *DotMap) Dots() []Dot {
	out := make([]Dot, len(m.dots))
	copy(out, m.dots)
	return out
}

// Nearest 最近的剩余豆子；索引为空时 ok 为 false
func (m *DotMap) Nearest(pos Pos) (Dot, float64, bool) {
	i, d, ok := Nearest(m.dots, pos)
	if !ok {
		return Dot{}, d, false
	}
	return m.dots[i], d, true
}

// Consume 若最近豆子距离严格小于 threshold，则移除并返回它；否则不做任何改动
func (m *DotMap) Consume(pos Pos, threshold float64) (Dot, bool) {
	i, d, ok := Nearest(m.dots, pos)
	if !ok || !(d < threshold) {
		return Dot{}, false
	}
	dot := m.dots[i]
	m.dots = append(m.dots[:i], m.dots[i+1:]...)
	return dot, true
}
