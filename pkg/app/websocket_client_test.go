package app

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recvHandler struct {
	gws.BuiltinEventHandler
	messages chan string
}

func (h *recvHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	h.messages <- message.Data.String()
}

func newHubServer(t *testing.T, uid int64) (*WebsocketServer, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewWebsocketServer(WebsocketServerConfig{}, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/events", func(c *gin.Context) {
		c.Set(UserTokenKey, &UserEntity{UID: uid})
	}, hub.Run())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
}

func TestWebsocketServer_PushReachesOwnerOnly(t *testing.T) {
	hub, url := newHubServer(t, 7)

	h := &recvHandler{messages: make(chan string, 4)}
	conn, _, err := gws.NewClient(h, &gws.ClientOption{Addr: url})
	require.NoError(t, err)
	go conn.ReadLoop()
	t.Cleanup(func() { _ = conn.WriteClose(1000, nil) })

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// 其他用户的事件不会推送到该连接
	hub.Push(8, "fragment", map[string]string{"fragmentId": "other"})
	hub.Push(7, "fragment", map[string]string{"fragmentId": "f1"})

	select {
	case raw := <-h.messages:
		var msg struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, sonic.UnmarshalString(raw, &msg))
		assert.Equal(t, "fragment", msg.Type)
		assert.Equal(t, "f1", msg.Data["fragmentId"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestWebsocketServer_RemoveOnClose(t *testing.T) {
	hub, url := newHubServer(t, 9)

	h := &recvHandler{messages: make(chan string, 1)}
	conn, _, err := gws.NewClient(h, &gws.ClientOption{Addr: url})
	require.NoError(t, err)
	go conn.ReadLoop()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.WriteString("close"))
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	// 无连接时推送不应出错
	hub.Push(9, "fragment", nil)
}

func TestWebsocketServer_RejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewWebsocketServer(WebsocketServerConfig{}, nil)
	r := gin.New()
	r.GET("/events", hub.Run())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/events", nil))
	assert.Equal(t, 401, w.Code)
}
