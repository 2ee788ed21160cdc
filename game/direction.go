package game

import (
	"fmt"
	"strings"
)

// Direction 角色朝向；零值为 DirStop
type Direction int

const (
	DirStop Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight

	dirCount
)

// DirNone 表示本 Tick 没有转向请求；它不是合法朝向
const DirNone Direction = -1

var dirNames = [dirCount]string{"stop", "up", "down", "left", "right"}

// 单位向量，y 轴向下
var dirVectors = [dirCount]Pos{
	DirStop:  {},
	DirUp:    {X: 0, Y: -1},
	DirDown:  {X: 0, Y: 1},
	DirLeft:  {X: -1, Y: 0},
	DirRight: {X: 1, Y: 0},
}

// Valid 是否为已知方向（含 DirStop）
func (d Direction) Valid() bool { return d >= DirStop && d < dirCount }

// Vector 返回方向的单位向量；Stop 与非法值为零向量
func (d Direction) Vector() Pos {
	if !d.Valid() {
		return Pos{}
	}
	return dirVectors[d]
}

func (d Direction) String() string {
	if d == DirNone {
		return "none"
	}
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return dirNames[d]
}

// MarshalText 以小写名称序列化，供 JSON 快照使用
func (d Direction) MarshalText() ([]byte, error) {
	if d == DirNone {
		return []byte("none"), nil
	}
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(dirNames[d]), nil
}

// UnmarshalText 严格解析：未知名称返回错误
func (d *Direction) UnmarshalText(b []byte) error {
	if string(b) == "none" {
		*d = DirNone
		return nil
	}
	v, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("unknown direction %q", string(b))
	}
	*d = v
	return nil
}

// ParseDirection 解析方向名（大小写不敏感，支持 north/south/west/east 别名）。
// 无法识别时返回 (DirStop, false)。
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop":
		return DirStop, true
	case "up", "north":
		return DirUp, true
	case "down", "south":
		return DirDown, true
	case "left", "west":
		return DirLeft, true
	case "right", "east":
		return DirRight, true
	}
	return DirStop, false
}
