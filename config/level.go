package config

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"pacnav/game"
)

// BuildWorld 把关卡数据转换为 game.World；每次调用都生成一份全新的状态
func (c *Config) BuildWorld(log *zap.SugaredLogger) (*game.World, error) {
	graphs := make(map[string]*game.Map, len(c.Level.Graphs))
	names := make([]string, 0, len(c.Level.Graphs))
	for name := range c.Level.Graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m, err := buildGraph(c.Level.Graphs[name])
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", name, err)
		}
		graphs[name] = m
	}

	dots := make([]game.Dot, len(c.Level.Dots))
	for i, d := range c.Level.Dots {
		dots[i] = game.Dot{Pos: game.Pos{X: d.X, Y: d.Y}, Score: d.Score}
	}
	dm, err := game.NewDotMap(dots)
	if err != nil {
		return nil, err
	}

	player := -1
	entities := make([]*game.Entity, 0, len(c.Level.Entities))
	for i, ec := range c.Level.Entities {
		e, err := buildEntity(ec, graphs, c.Rules.SnapThreshold)
		if err != nil {
			return nil, err
		}
		if ec.Name == c.Level.Player {
			player = i
		}
		entities = append(entities, e)
	}

	return game.NewWorld(dm, entities, player, game.Rules{
		SnapThreshold:   c.Rules.SnapThreshold,
		PickupThreshold: c.Rules.PickupThreshold,
		HighScore:       c.Rules.HighScore,
		Logger:          log,
	})
}

func buildGraph(gc GraphConfig) (*game.Map, error) {
	nodes := make([]game.Node, len(gc.Nodes))
	for i, nc := range gc.Nodes {
		n := game.Node{Pos: game.Pos{X: nc.X, Y: nc.Y}}
		if len(nc.Neighbors) > 0 {
			n.Neighbors = make(map[game.Direction]int, len(nc.Neighbors))
		}
		for name, j := range nc.Neighbors {
			dir, ok := game.ParseDirection(name)
			if !ok || dir == game.DirStop {
				return nil, fmt.Errorf("node %d: %w: %q", i, game.ErrInvalidDirection, name)
			}
			// left/west、Left/left 等别名会映射到同一方向，YAML map 的遍历顺序不固定
			if _, dup := n.Neighbors[dir]; dup {
				return nil, fmt.Errorf("node %d: %w: %q (%s)", i, game.ErrDuplicateNeighbor, name, dir)
			}
			n.Neighbors[dir] = j
		}
		nodes[i] = n
	}
	return game.NewMap(nodes)
}

func buildEntity(ec EntityConfig, graphs map[string]*game.Map, snap float64) (*game.Entity, error) {
	dir, ok := game.ParseDirection(ec.Direction)
	if !ok {
		return nil, fmt.Errorf("entity %q: %w: %q", ec.Name, game.ErrInvalidDirection, ec.Direction)
	}
	e, err := game.NewEntity(ec.Name, graphs[ec.Graph], game.Pos{X: ec.X, Y: ec.Y}, dir, ec.Speed)
	if err != nil {
		return nil, err
	}
	if ec.Node != nil {
		if err := e.Attach(*ec.Node); err != nil {
			return nil, err
		}
		return e, nil
	}
	if snap == 0 {
		snap = game.DefaultSnapThreshold
	}
	e.Resync(snap)
	return e, nil
}
