// Package websocket отдаёт браузерным клиентам live-поток состояния
// отслеживания: каждый переход автомата и каждая сверка порождают
// trackingUpdate сообщение.
package websocket

import (
	"sync"

	jsoniter "github.com/json-iterator/go"

	"sentinel/internal/models"
	"sentinel/pkg/utils"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// TrackingUpdateMessage - сообщение с новым снимком состояния
type TrackingUpdateMessage struct {
	Type string                  `json:"type"`
	Data models.TrackingSnapshot `json:"data"`
}

// Hub управляет всеми активными WebSocket соединениями
//
// Центральный менеджер broadcast сообщений: движок публикует снимки
// через BroadcastTracking, hub рассылает их всем подключенным клиентам.
// Новому клиенту сразу отправляется последний снимок, чтобы UI не ждал
// следующего события.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// Последний снимок для инициализации новых клиентов
	lastSnapshot []byte

	mu sync.RWMutex
}

// NewHub создает новый Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run запускает главный цикл Hub.
// Должен запускаться в отдельной горутине: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			snapshot := h.lastSnapshot
			total := len(h.clients)
			h.mu.Unlock()

			// Инициализация нового клиента последним снимком
			if snapshot != nil {
				select {
				case client.send <- snapshot:
				default:
				}
			}
			utils.Info("websocket client connected", utils.Int("clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			utils.Info("websocket client disconnected", utils.Int("clients", total))

		case message := <-h.broadcast:
			// Копируем список клиентов под коротким RLock, отправляем без него
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// Клиент не читает - помечаем для удаления
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				total := len(h.clients)
				h.mu.Unlock()
				utils.Warn("removed slow websocket clients",
					utils.Int("removed", len(toRemove)), utils.Int("clients", total))
			}
		}
	}
}

// BroadcastTracking отправляет снимок состояния всем клиентам.
// Реализует bot.SnapshotPublisher.
func (h *Hub) BroadcastTracking(snap models.TrackingSnapshot) {
	data, err := jsonCodec.Marshal(TrackingUpdateMessage{
		Type: "trackingUpdate",
		Data: snap,
	})
	if err != nil {
		utils.Error("failed to marshal tracking snapshot", utils.Err(err))
		return
	}

	h.mu.Lock()
	h.lastSnapshot = data
	h.mu.Unlock()

	select {
	case h.broadcast <- data:
	default:
		// Полный буфер означает что hub не запущен или завис;
		// терять снимок безопасно, придёт следующий
	}
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
