package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	clients   = make(map[*websocket.Conn]bool) // Connected solve-feed clients
	broadcast = make(chan SolveUpdate)         // Broadcast channel for new solves
	mutex     sync.Mutex                       // Mutex to protect the clients map
)

// SolveUpdate is one entry of the live solve feed
type SolveUpdate struct {
	ChallengeID   string    `json:"challenge_id"`
	ChallengeName string    `json:"challenge_name"`
	TeamID        string    `json:"team_id"`
	TeamName      string    `json:"team_name"`
	Date          time.Time `json:"date"`
}

// RegisterClient adds a WebSocket client to the solve feed
func RegisterClient(conn *websocket.Conn) {
	mutex.Lock()
	clients[conn] = true
	mutex.Unlock()
}

// UnregisterClient removes a WebSocket client from the solve feed
func UnregisterClient(conn *websocket.Conn) {
	mutex.Lock()
	delete(clients, conn)
	mutex.Unlock()
}

// BroadcastSolve sends a new solve to all connected clients
func BroadcastSolve(update SolveUpdate) {
	broadcast <- update
}

func handleBroadcast() {
	for {
		update := <-broadcast
		mutex.Lock()
		for client := range clients {
			if err := client.WriteJSON(update); err != nil {
				log.Printf("WebSocket write error: %v", err)
				client.Close()
				delete(clients, client)
			}
		}
		mutex.Unlock()
	}
}

func init() {
	go handleBroadcast()
}
