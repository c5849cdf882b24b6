package app

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/logger"
)

const (
	WebSocketServerPingInterval = 25 * time.Second
	WebSocketServerPingWait     = 40 * time.Second
)

// WebSocketMessage 推送给客户端的消息
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
}

// WebsocketClient 一个已认证的连接
type WebsocketClient struct {
	conn *gws.Conn
	done chan struct{}
	once sync.Once
	UID  int64
}

func (c *WebsocketClient) close() {
	c.once.Do(func() { close(c.done) })
}

// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(interval time.Duration, l *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				l.Debug("websocket ping failed", zap.Int64(logger.FieldUID, c.UID), zap.Error(err))
				return
			}
		}
	}
}

type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer is a push-only hub: connections are authenticated by the
// HTTP middleware before the upgrade and grouped by uid.
// WebsocketServer 推送中心，连接在升级前已经通过认证，按用户分组
type WebsocketServer struct {
	gws.BuiltinEventHandler

	clients     ConnStorage
	userClients map[int64]ConnStorage
	mu          sync.RWMutex
	up          *gws.Upgrader
	config      *WebsocketServerConfig
	logger      *zap.Logger
}

func NewWebsocketServer(c WebsocketServerConfig, l *zap.Logger) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if l == nil {
		l = zap.NewNop()
	}
	w := &WebsocketServer{
		clients:     make(ConnStorage),
		userClients: make(map[int64]ConnStorage),
		config:      &c,
		logger:      l,
	}
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
	return w
}

// Run upgrades an authenticated request. GetUID must already be set.
func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := GetUID(c)
		if uid == 0 {
			NewResponse(c).ToResponse(code.ErrorNotUserAuthToken)
			return
		}
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.logger.Warn("websocket upgrade failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
			return
		}
		client := &WebsocketClient{conn: socket, done: make(chan struct{}), UID: uid}
		w.AddClient(client)
		go client.PingLoop(w.config.PingInterval, w.logger)
		go socket.ReadLoop()
	}
}

// Push sends one message to every connection of uid.
// Push 向用户的全部连接推送消息
func (w *WebsocketServer) Push(uid int64, msgType string, data interface{}) {
	w.mu.RLock()
	conns := make([]*gws.Conn, 0, len(w.userClients[uid]))
	for conn := range w.userClients[uid] {
		conns = append(conns, conn)
	}
	w.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	payload, err := sonic.Marshal(WebSocketMessage{Type: msgType, Data: data})
	if err != nil {
		w.logger.Error("websocket encode failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return
	}
	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()
	for _, conn := range conns {
		_ = b.Broadcast(conn)
	}
}

// Count 当前连接数
func (w *WebsocketServer) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
	if w.userClients[c.UID] == nil {
		w.userClients[c.UID] = make(ConnStorage)
	}
	w.userClients[c.UID][c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := w.clients[conn]
	delete(w.clients, conn)
	if c != nil {
		delete(w.userClients[c.UID], conn)
		if len(w.userClients[c.UID]) == 0 {
			delete(w.userClients, c.UID)
		}
	}
	return c
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	if c := w.RemoveClient(conn); c != nil {
		c.close()
		w.logger.Debug("websocket client left", zap.Int64(logger.FieldUID, c.UID), zap.Int(logger.FieldCount, w.Count()))
	}
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
}

// OnMessage 只接受 "close"，其余消息忽略
func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
	if message.Opcode == gws.OpcodeText && message.Data.String() == "close" {
		_ = conn.WriteClose(1000, []byte("ClientClose"))
	}
}
