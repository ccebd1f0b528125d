package server

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"feedkiosk/app"
)

// Broadcaster keeps the latest snapshot rendered by the engine and passes
// every new one on to the connected SSE clients. It is the engine's Presenter.
type Broadcaster struct {
	sync.RWMutex
	latest  app.Snapshot
	clients map[string]chan app.Snapshot
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan app.Snapshot),
	}
}

// Render stores the snapshot and sends it to every client without blocking
func (b *Broadcaster) Render(snapshot app.Snapshot) {
	b.Lock()
	b.latest = snapshot
	b.Unlock()

	b.RLock()
	defer b.RUnlock()
	for id, client := range b.clients {
		select {
		case client <- snapshot: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping snapshot for client: %v", id)
		}
	}
}

// Latest returns the most recently rendered snapshot
func (b *Broadcaster) Latest() app.Snapshot {
	b.RLock()
	defer b.RUnlock()
	return b.latest
}

// Clients returns the number of connected clients
func (b *Broadcaster) Clients() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) AddClient(key string, client chan app.Snapshot) {
	b.Lock()
	defer b.Unlock()
	b.clients[key] = client
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Adding client to broadcaster")
}

func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.clients[key]; ok {
		close(client)
		delete(b.clients, key)
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.clients {
		close(client)
		delete(b.clients, key)
	}
}
