package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntity(t *testing.T, m *Map, pos Pos, dir Direction, speed float64) *Entity {
	t.Helper()
	e, err := NewEntity("Pacman", m, pos, dir, speed)
	require.NoError(t, err)
	return e
}

func TestNewEntity_Validation(t *testing.T) {
	m := twoNodeMap(t, false)

	_, err := NewEntity("a", nil, Pos{}, DirStop, 1)
	assert.ErrorIs(t, err, ErrNilMap)
	_, err = NewEntity("a", m, Pos{}, DirStop, -1)
	assert.ErrorIs(t, err, ErrBadSpeed)
	_, err = NewEntity("a", m, Pos{}, Direction(9), 1)
	assert.ErrorIs(t, err, ErrInvalidDirection)

	e := newTestEntity(t, m, Pos{}, DirStop, 1)
	_, ok := e.Node()
	assert.False(t, ok)
	assert.ErrorIs(t, e.Attach(2), ErrNodeOutRange)
	require.NoError(t, e.Attach(1))
	n, ok := e.Node()
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestEntity_RejectsDirectionWithoutNeighbor(t *testing.T) {
	e := newTestEntity(t, twoNodeMap(t, false), Pos{}, DirStop, 1)
	require.NoError(t, e.Attach(0))

	assert.False(t, e.ChangeDirection(DirRight))
	assert.Equal(t, DirStop, e.Direction())

	e.Advance()
	assert.Equal(t, Pos{}, e.Position())
}

func TestEntity_AcceptsDirectionWithNeighbor(t *testing.T) {
	e := newTestEntity(t, twoNodeMap(t, true), Pos{}, DirStop, 1)
	require.NoError(t, e.Attach(0))

	assert.True(t, e.ChangeDirection(DirRight))
	assert.Equal(t, DirRight, e.Direction())

	e.Advance()
	e.Resync(DefaultSnapThreshold)
	assert.Equal(t, Pos{X: 1, Y: 0}, e.Position())
	n, ok := e.Node()
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

func TestEntity_RejectsWhileUnassociated(t *testing.T) {
	e := newTestEntity(t, twoNodeMap(t, true), Pos{X: 5}, DirRight, 1)
	e.Resync(DefaultSnapThreshold)
	_, ok := e.Node()
	require.False(t, ok)

	assert.False(t, e.ChangeDirection(DirLeft))
	assert.False(t, e.ChangeDirection(DirStop))
	assert.Equal(t, DirRight, e.Direction())

	// 继续沿原方向前进直到重新吸附
	for i := 0; i < 3; i++ {
		e.Advance()
	}
	assert.True(t, e.Resync(DefaultSnapThreshold))
	n, _ := e.Node()
	assert.Equal(t, 1, n)
	assert.True(t, e.ChangeDirection(DirLeft))
}

func TestEntity_InvalidDirectionNeverPanics(t *testing.T) {
	e := newTestEntity(t, twoNodeMap(t, true), Pos{}, DirRight, 1)
	require.NoError(t, e.Attach(0))

	assert.NotPanics(t, func() {
		assert.False(t, e.ChangeDirection(Direction(77)))
		assert.False(t, e.ChangeDirection(Direction(-1)))
	})
	assert.Equal(t, DirRight, e.Direction())
}

func TestEntity_StopAcceptedAtNode(t *testing.T) {
	e := newTestEntity(t, twoNodeMap(t, true), Pos{}, DirRight, 1)
	require.NoError(t, e.Attach(0))

	assert.True(t, e.ChangeDirection(DirStop))
	e.Advance()
	assert.Equal(t, Pos{}, e.Position())
}

func TestEntity_SnapThresholdIsStrict(t *testing.T) {
	m, err := NewMap([]Node{{Pos: Pos{X: 0, Y: 0}}})
	require.NoError(t, err)

	at := newTestEntity(t, m, Pos{X: 3, Y: 0}, DirStop, 0)
	require.NoError(t, at.Attach(0))
	assert.False(t, at.Resync(DefaultSnapThreshold))
	_, ok := at.Node()
	assert.False(t, ok)

	inside := newTestEntity(t, m, Pos{X: 0, Y: 3 - 1e-9}, DirStop, 0)
	assert.True(t, inside.Resync(DefaultSnapThreshold))
	n, ok := inside.Node()
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	// 已关联同一节点时不再报告变化
	assert.False(t, inside.Resync(DefaultSnapThreshold))
}
