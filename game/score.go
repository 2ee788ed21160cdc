package game

// Score 记分板计数：1UP、最高分、2UP
type Score struct {
	Player int `json:"player"`
	High   int `json:"high"`
	Second int `json:"second"`
}

// Add 给当前玩家加分并刷新最高分
func (s *Score) Add(delta int) {
	s.Player += delta
	if s.Player > s.High {
		s.High = s.Player
	}
}
