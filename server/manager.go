package server

import (
	"context"
	"fmt"
	"sync"

	"pacnav/game"
)

// WorldFactory 为新房间生成一份独立的世界状态
type WorldFactory func() (*game.World, error)

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	factory  WorldFactory
	tickRate int

	ctx    context.Context
	cancel context.CancelFunc
}

var (
	defaultManager *RoomManager
	managerMu      sync.RWMutex
)

// InitRoomManager 设置全局房间管理器，HTTP 处理器通过 GetRoomManager 访问
func InitRoomManager(factory WorldFactory, tickRate int) *RoomManager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &RoomManager{
		rooms:    make(map[string]*Room),
		factory:  factory,
		tickRate: tickRate,
		ctx:      ctx,
		cancel:   cancel,
	}
	managerMu.Lock()
	defaultManager = m
	managerMu.Unlock()
	return m
}

// GetRoomManager 全局房间管理器；未初始化时为 nil
func GetRoomManager() *RoomManager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return defaultManager
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) (*Room, error) {
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return r, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	w, err := m.factory()
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	r = NewRoom(id, w, m.tickRate)
	m.rooms[id] = r
	r.StartTicker(m.ctx)
	Log.Infow("room created", "room", id, "tick_rate", r.tickRate)
	return r, nil
}

// Close 停止所有房间的 Tick；之后的离开请求不再阻塞
func (m *RoomManager) Close() {
	m.cancel()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		r.Stop()
	}
}
