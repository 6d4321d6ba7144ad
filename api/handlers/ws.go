package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thepradipthapa/livechat/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSChatHandler upgrades the connection and registers it for message event
// delivery. The socket is receive-only from the client's perspective;
// sending goes through the HTTP API.
func WSChatHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	services.GlobalWSConnManager.Add(userID.(int64), conn)
	defer services.GlobalWSConnManager.Remove(userID.(int64), conn)

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"connected","message":"WebSocket connected"}`))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
