package websocket

import "github.com/rs/zerolog/log"

// targeted is a message addressed to one user's connections, or to a
// single connection when client is set.
type targeted struct {
	userID  int64
	client  *Client
	message []byte
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Messages for the connections of a single user.
	direct chan targeted

	// A map of user IDs to the set of that user's open connections.
	subscriptions map[int64]map[*Client]bool

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		direct:        make(chan targeted, 64),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[int64]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.addSubscription(client)
			log.Info().Int("total_clients", len(h.clients)).Int64("user_id", client.UserID).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case t := <-h.direct:
			if t.client != nil {
				if h.clients[t.client] {
					h.deliver(t.client, t.message)
				}
				continue
			}
			for client := range h.subscriptions[t.userID] {
				h.deliver(client, t.message)
			}
		}
	}
}

// Stop terminates Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds client to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	if h.stopped() {
		return false
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its send channel. It is a no-op
// once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues a message for every connection of userID, waiting for
// room in the hub queue. It reports false once the hub has stopped.
func (h *Hub) SendToUser(userID int64, message []byte) bool {
	if h.stopped() {
		return false
	}
	select {
	case h.direct <- targeted{userID: userID, message: message}:
		return true
	case <-h.done:
		return false
	}
}

// SendToConn queues a reply for a single connection, waiting for room in
// the hub queue. Messages for connections that have already left are
// discarded.
func (h *Hub) SendToConn(client *Client, message []byte) bool {
	if h.stopped() {
		return false
	}
	select {
	case h.direct <- targeted{userID: client.UserID, client: client, message: message}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		log.Warn().Int64("user_id", client.UserID).Msg("Client send buffer full, disconnecting")
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.removeSubscription(client)
}

func (h *Hub) addSubscription(client *Client) {
	if h.subscriptions[client.UserID] == nil {
		h.subscriptions[client.UserID] = make(map[*Client]bool)
	}
	h.subscriptions[client.UserID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	if subs, ok := h.subscriptions[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.UserID)
		}
	}
}
