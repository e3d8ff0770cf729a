package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients, keyed by the user they
// authenticated as, and routes activity events to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of user IDs to the set of their open connections.
	byUser map[string]map[*Client]bool

	broadcast chan userMessage
}

type userMessage struct {
	userID  string
	payload []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
		broadcast:  make(chan userMessage, 64),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = make(map[*Client]bool)
			}
			h.byUser[client.UserID][client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case msg := <-h.broadcast:
			for client := range h.byUser[msg.userID] {
				select {
				case client.Send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// BroadcastTo sends a message to every open connection of the given user.
// Safe to call from any goroutine.
func (h *Hub) BroadcastTo(userID string, message []byte) {
	h.broadcast <- userMessage{userID: userID, payload: message}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	if subs, ok := h.byUser[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
}
