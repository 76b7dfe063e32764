package wall

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"mywall/middleware"
	"mywall/mq"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var (
	updateSubs = make(map[string][]*websocket.Conn)
	subsMu     sync.Mutex
)

// HandleUpdates streams post lifecycle events to the owning user's open
// clients. Auth comes in as a token query parameter because browsers cannot
// set headers on websocket dials.
func HandleUpdates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.URL.Query().Get("token")
	claims, err := middleware.ValidateJWT("Bearer " + token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	subsMu.Lock()
	updateSubs[userID] = append(updateSubs[userID], conn)
	subsMu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	subsMu.Lock()
	conns := updateSubs[userID]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	updateSubs[userID] = newList
	subsMu.Unlock()

	conn.Close()
}

// StartUpdatePump fans post events out to the owner's websocket clients.
func StartUpdatePump(ctx context.Context) {
	events := mq.Subscribe(ctx)
	go func() {
		for ev := range events {
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("marshal post event: %v", err)
				continue
			}
			pushUpdate(ev.UserID, payload)
		}
	}()
}

func pushUpdate(userID string, val []byte) {
	subsMu.Lock()
	defer subsMu.Unlock()

	conns := updateSubs[userID]
	newList := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}
	updateSubs[userID] = newList
}
