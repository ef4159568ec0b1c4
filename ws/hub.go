package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client // Theo từng episodeID
	GlobalClients map[*websocket.Conn]*Client            // Dành cho broadcast chung
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// Struct gửi trạng thái tiến trình của 1 episode
type EpisodeStatusUpdate struct {
	EpisodeID string  `json:"episode_id"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
	Error     string  `json:"error,omitempty"`
}

// Register theo episodeID riêng
func (h *Hub) Register(episodeID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[episodeID]; !ok {
		h.Clients[episodeID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Clients[episodeID][conn] = client

	go h.readPump(episodeID, conn)
	go h.writePump(episodeID, conn)
}

// Register global cho trang danh sách
func (h *Hub) RegisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.GlobalClients[conn] = client

	go h.readGlobalPump(conn)
	go h.writeGlobalPump(conn)
}

// Broadcast theo episodeID
func (h *Hub) Broadcast(episodeID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[episodeID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Broadcast toàn bộ global clients (danh sách)
func (h *Hub) BroadcastGlobal(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// GetStats trả số lượng kết nối đang mở (cho health check)
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	perEpisode := 0
	for _, clients := range h.Clients {
		perEpisode += len(clients)
	}
	return map[string]int{
		"episode_clients": perEpisode,
		"global_clients":  len(h.GlobalClients),
	}
}

// Public function gọi gửi status episode
func SendEpisodeStatus(episodeID, state string, progress float64, errorMsg string) {
	update := EpisodeStatusUpdate{
		EpisodeID: episodeID,
		State:     state,
		Progress:  progress,
		Error:     errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(episodeID, data)
}

// Public function gửi signal cập nhật danh sách episode
func BroadcastEpisodeListChanged() {
	data := []byte(`{"type": "episode_list_changed"}`)
	H.BroadcastGlobal(data)
}

// Unregister client theo episodeID
func (h *Hub) Unregister(episodeID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[episodeID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, episodeID)
		}
	}
}

// Unregister global client
func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

// Read pump riêng theo episodeID
func (h *Hub) readPump(episodeID string, conn *websocket.Conn) {
	defer h.Unregister(episodeID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Write pump riêng theo episodeID
func (h *Hub) writePump(episodeID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[episodeID][conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// Read pump global
func (h *Hub) readGlobalPump(conn *websocket.Conn) {
	defer h.UnregisterGlobal(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Write pump global
func (h *Hub) writeGlobalPump(conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.GlobalClients[conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
