package game

import "math"

// Pos 连续二维坐标（屏幕坐标系，y 轴向下）
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add 返回 p + q
func (p Pos) Add(q Pos) Pos { return Pos{X: p.X + q.X, Y: p.Y + q.Y} }

// Scale 返回 p * k
func (p Pos) Scale(k float64) Pos { return Pos{X: p.X * k, Y: p.Y * k} }

// Distance 欧氏距离（非平方），阈值比较需要真实距离
func Distance(a, b Pos) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Positioner 任何可以给出自身坐标的对象（节点、豆子、角色）
type Positioner interface {
	Position() Pos
}

// Nearest 线性扫描 items，返回离 pos 最近元素的下标与距离。
// 距离相同时保留先出现的元素；items 为空时 ok 为 false。
func Nearest[T Positioner](items []T, pos Pos) (index int, dist float64, ok bool) {
	if len(items) == 0 {
		return -1, math.Inf(1), false
	}
	index, dist = -1, math.Inf(1)
	for i, it := range items {
		d := Distance(it.Position(), pos)
		if d < dist {
			index, dist = i, d
		}
	}
	return index, dist, index >= 0
}
