package server

import (
	"encoding/json"
	"net/http"
)

// DefaultRoomID 未指定 room 参数时使用的房间
var DefaultRoomID = "room-1"

// roomFromRequest 解析 ?room= 并获取（或创建）房间；失败时已写出错误响应
func roomFromRequest(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = DefaultRoomID
	}
	rm := GetRoomManager()
	if rm == nil {
		http.Error(w, "room manager not ready", http.StatusServiceUnavailable)
		return nil, false
	}
	room, err := rm.GetOrCreateRoom(roomID)
	if err != nil {
		Log.Errorw("create room", "room", roomID, "err", err)
		http.Error(w, "cannot create room", http.StatusInternalServerError)
		return nil, false
	}
	return room, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新基本规则）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段，如 {"step":1.4,"paused":false}
func HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		room, ok := roomFromRequest(w, r)
		if !ok {
			return
		}
		writeJSON(w, room.Settings())
	case http.MethodPost:
		var body RoomSettings
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		room, ok := roomFromRequest(w, r)
		if !ok {
			return
		}
		if err := room.Configure(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, ok := roomFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"room":    room.ID,
		"tick":    room.TickSeq(),
		"metrics": room.metrics.Snapshot(),
	})
}

// HandleState 输出最近一次完整 Tick 后的世界快照（供渲染端轮询）
// GET /state?room=room-1
func HandleState(w http.ResponseWriter, r *http.Request) {
	room, ok := roomFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, room.Snapshot())
}
