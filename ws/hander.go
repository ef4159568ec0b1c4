package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // chỉ để phát triển, nên giới hạn ở production
	},
}

// gửi message dạng JSON qua WebSocket
func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("Lỗi JSON marshal:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("Lỗi gửi message:", err)
	}
}

// WebSocket theo dõi tiến trình của 1 episode
func HandleEpisodeWebSocket(c *gin.Context) {
	episodeID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	H.Register(episodeID, conn)
	defer H.Unregister(episodeID, conn)

	log.Printf("Episode WS connected: episodeID=%s\n", episodeID)
	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to episode " + episodeID})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("Episode WS disconnected: episodeID=%s\n", episodeID)
	conn.Close()
}

// WebSocket cho global (danh sách episode)
func HandleGlobalWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	H.RegisterGlobal(conn)
	defer H.UnregisterGlobal(conn)

	log.Println("Global WS connected")
	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to global WebSocket"})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Println("Global WS disconnected")
	conn.Close()
}
