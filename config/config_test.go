package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacnav/game"
)

const testLevel = `
rules:
  high_score: 120
level:
  graphs:
    pac:
      nodes:
        - {x: 0, y: 0, neighbors: {east: 1}}
        - {x: 10, y: 0, neighbors: {left: 0}}
  entities:
    - {name: Pacman, graph: pac, x: 0, y: 0, speed: 1, node: 0}
    - {name: Blinky, graph: pac, x: 11, y: 0, direction: left}
  dots:
    - {x: 5, y: 5, score: 10}
    - {x: 30, y: 30, score: 50}
`

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testLevel), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 60, c.Server.TickRate)
	assert.Equal(t, "room-1", c.Server.DefaultRoom)
	assert.Equal(t, "app.log", c.Log.File)
	assert.Equal(t, "Pacman", c.Level.Player)
	assert.Equal(t, "stop", c.Level.Entities[0].Direction)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_RejectsBrokenReferences(t *testing.T) {
	_, err := Parse([]byte(`level: {entities: [{name: a, graph: missing}], graphs: {}}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Parse([]byte(`level: {player: ghost, entities: [{name: a, graph: g}], graphs: {g: {nodes: [{x: 0, y: 0}]}}}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Parse([]byte(`level: {graphs: {}}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuildWorld(t *testing.T) {
	c, err := Parse([]byte(testLevel))
	require.NoError(t, err)

	w, err := c.BuildWorld(nil)
	require.NoError(t, err)
	assert.Equal(t, "Pacman", w.Player().Name)
	assert.Equal(t, 2, w.Dots().Len())
	assert.Equal(t, 120, w.Score().High)

	n, ok := w.Player().Node()
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	blinky, ok := w.Entity("Blinky")
	require.True(t, ok)
	assert.Equal(t, game.DirLeft, blinky.Direction())
	n, ok = blinky.Node()
	assert.True(t, ok, "resynced from position")
	assert.Equal(t, 1, n)

	res := w.Tick(game.DirRight)
	assert.True(t, res.Accepted)
	assert.Equal(t, 10, res.ScoreDelta)

	// 每次构建都是独立状态
	w2, err := c.BuildWorld(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, w2.Dots().Len())
}

func TestBuildWorld_ConstructionErrors(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want error
	}{
		"empty graph": {
			yaml: `level: {entities: [{name: a, graph: g}], graphs: {g: {nodes: []}}}`,
			want: game.ErrEmptyMap,
		},
		"neighbor out of range": {
			yaml: `level: {entities: [{name: a, graph: g}], graphs: {g: {nodes: [{x: 0, y: 0, neighbors: {up: 4}}]}}}`,
			want: game.ErrNeighborOutOfRange,
		},
		"unknown neighbor direction": {
			yaml: `level: {entities: [{name: a, graph: g}], graphs: {g: {nodes: [{x: 0, y: 0, neighbors: {diagonal: 0}}]}}}`,
			want: game.ErrInvalidDirection,
		},
		"neighbor alias repeats direction": {
			yaml: `level: {entities: [{name: a, graph: g}], graphs: {g: {nodes: [{x: 0, y: 0, neighbors: {left: 1, west: 2}}, {x: 10, y: 0}, {x: 20, y: 0}]}}}`,
			want: game.ErrDuplicateNeighbor,
		},
		"neighbor case variant repeats direction": {
			yaml: `level: {entities: [{name: a, graph: g}], graphs: {g: {nodes: [{x: 0, y: 0, neighbors: {Up: 1, up: 1}}, {x: 10, y: 0}]}}}`,
			want: game.ErrDuplicateNeighbor,
		},
		"duplicate dot": {
			yaml: `level: {entities: [{name: a, graph: g}], graphs: {g: {nodes: [{x: 0, y: 0}]}}, dots: [{x: 1, y: 1}, {x: 1, y: 1}]}`,
			want: game.ErrDuplicateDot,
		},
		"attach out of range": {
			yaml: `level: {entities: [{name: a, graph: g, node: 3}], graphs: {g: {nodes: [{x: 0, y: 0}]}}}`,
			want: game.ErrNodeOutRange,
		},
		"bad speed": {
			yaml: `level: {entities: [{name: a, graph: g, speed: -2}], graphs: {g: {nodes: [{x: 0, y: 0}]}}}`,
			want: game.ErrBadSpeed,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Parse([]byte(tc.yaml))
			require.NoError(t, err)
			// map 遍历顺序随机，多次构建结果必须一致
			for i := 0; i < 20; i++ {
				_, err = c.BuildWorld(nil)
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "config.yaml"))
	require.NoError(t, err)
	w, err := c.BuildWorld(nil)
	require.NoError(t, err)
	assert.Equal(t, "Pacman", w.Player().Name)
	assert.Greater(t, w.Dots().Len(), 0)
}
