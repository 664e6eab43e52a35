package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"fleamarket_go/config"
	"fleamarket_go/middleware"
	"fleamarket_go/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// 升级器 - 将HTTP连接升级为WebSocket连接
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// 生产环境应该验证origin
			return true
		},
	}

	// 会话房间管理
	rooms      = make(map[string]*Room) // conversationID -> Room
	roomsMutex sync.RWMutex

	messageService *services.MessageService
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// LiveMessage 推送给浏览器的实时消息结构
type LiveMessage struct {
	Type           string      `json:"type"` // messages, ping
	ConversationID string      `json:"conversation_id,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Timestamp      int64       `json:"timestamp"`
}

// Client 已连接的浏览器视图
type Client struct {
	room *Room
	conn *websocket.Conn
	send chan *LiveMessage
}

// Room 会话房间
// 第一个视图挂载时启动对托管后端的固定间隔轮询，
// 最后一个视图卸载时停掉轮询。轮询不做退避和自适应。
type Room struct {
	ConversationID string

	mu      sync.RWMutex
	clients map[*Client]bool
	token   string // 最近加入者的会话令牌，轮询时使用
	stop    chan struct{}
}

// InitLive 初始化实时消息通道
func InitLive() error {
	messageService = services.NewMessageService()
	log.Println("✅ Live message channel initialized")
	return nil
}

// CloseLive 关闭所有房间
func CloseLive() {
	roomsMutex.Lock()
	defer roomsMutex.Unlock()

	for id, room := range rooms {
		close(room.stop)
		delete(rooms, id)
	}
}

// HandleLive 处理会话视图的WebSocket连接
func HandleLive(c *gin.Context) {
	conversationID := c.Query("conversation_id")
	token := c.Query("token")
	if conversationID == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_id and token are required"})
		return
	}

	if _, err := config.GetSessionClient().CheckToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
		return
	}

	// 升级HTTP连接为WebSocket连接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		middleware.ErrorLogger("failed to upgrade connection", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan *LiveMessage, 256),
	}
	client.room = joinRoom(conversationID, token, client)

	// 启动读写goroutine
	go client.writePump()
	go client.readPump()
}

// joinRoom 获取或创建房间并注册客户端，首次创建时启动轮询器
// 注册必须在roomsMutex内完成：否则拿到的房间可能在注册前
// 就被最后一个离开的客户端拆掉，新客户端挂在一个已停摆的房间上。
func joinRoom(conversationID, token string, client *Client) *Room {
	roomsMutex.Lock()
	defer roomsMutex.Unlock()

	room, exists := rooms[conversationID]
	if !exists {
		room = &Room{
			ConversationID: conversationID,
			clients:        make(map[*Client]bool),
			stop:           make(chan struct{}),
		}
		rooms[conversationID] = room
		go room.poll()
	}

	room.mu.Lock()
	room.token = token
	room.clients[client] = true
	room.mu.Unlock()

	return room
}

// leave 客户端断开，房间空了就停掉轮询
// 与joinRoom保持同一锁序（roomsMutex在外），空房间的判定和摘除是一个原子步骤。
func (r *Room) leave(client *Client) {
	roomsMutex.Lock()

	r.mu.Lock()
	delete(r.clients, client)
	empty := len(r.clients) == 0
	r.mu.Unlock()

	if empty {
		if current, exists := rooms[r.ConversationID]; exists && current == r {
			close(r.stop)
			delete(rooms, r.ConversationID)
		}
	}
	roomsMutex.Unlock()

	close(client.send)
}

// poll 对托管后端的固定间隔轮询
// 视图挂载期间每5秒拉一次，有新消息就广播给房间内的所有视图；
// 拉取失败只记日志，下一轮照常进行。
func (r *Room) poll() {
	ticker := time.NewTicker(services.PollInterval())
	defer ticker.Stop()

	// 历史消息由REST接口加载，这里只推增量
	watermark := time.Now()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.mu.RLock()
			token := r.token
			r.mu.RUnlock()

			ctx, cancel := context.WithTimeout(config.WithSessionToken(context.Background(), token), 10*time.Second)
			fresh, latest, err := messageService.MessagesAfter(ctx, r.ConversationID, watermark)
			cancel()
			if err != nil {
				middleware.WarnLogger("message poll failed",
					zap.String("conversation_id", r.ConversationID),
					zap.Error(err),
				)
				continue
			}

			watermark = latest
			if len(fresh) > 0 {
				r.broadcast(&LiveMessage{
					Type:           "messages",
					ConversationID: r.ConversationID,
					Data:           fresh,
					Timestamp:      time.Now().Unix(),
				})
			}
		}
	}
}

// broadcast 向房间内所有客户端推送
func (r *Room) broadcast(message *LiveMessage) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for client := range r.clients {
		select {
		case client.send <- message:
		default:
			// 发送队列满，丢弃（慢客户端不拖累整个房间）
		}
	}
}

// readPump 从WebSocket连接读取消息
// 浏览器端只发心跳，业务消息都走REST接口。
func (c *Client) readPump() {
	defer func() {
		c.room.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.DebugLogger("websocket read error", zap.Error(err))
			}
			break
		}
	}
}

// writePump 向WebSocket连接写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
