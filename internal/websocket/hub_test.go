package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sgo/internal/middleware"
	"sgo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("hub-test-secret")

func token(t *testing.T, companyID uuid.UUID) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        uuid.NewString(),
		"company_id": companyID.String(),
		"role":       "staff",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestHubDeliversToSameCompanyOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", hub.Handler(middleware.NewAuth(secret, false)))
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token="

	_, resp, err := gws.DefaultDialer.Dial(url+"bogus", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	mine, other := uuid.New(), uuid.New()
	conn, _, err := gws.DefaultDialer.Dial(url+token(t, mine), nil)
	require.NoError(t, err)
	defer conn.Close()
	otherConn, _, err := gws.DefaultDialer.Dial(url+token(t, other), nil)
	require.NoError(t, err)
	defer otherConn.Close()

	require.Eventually(t, func() bool { return hub.Connected(mine) == 1 && hub.Connected(other) == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifyExpense(service.ExpenseEvent{Type: service.ExpenseCreated, CompanyID: mine.String(), ExpenseID: "e1", Amount: "250.00"})

	var got service.ExpenseEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, service.ExpenseCreated, got.Type)
	assert.Equal(t, "e1", got.ExpenseID)

	require.NoError(t, otherConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = otherConn.ReadMessage()
	assert.Error(t, err, "other companies must not receive the event")
}

func TestHubAfterShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	handled := make(chan struct{}, 1)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Next()
		handled <- struct{}{}
	}, hub.Handler(middleware.NewAuth(secret, false)))
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token="

	company := uuid.New()
	live, _, err := gws.DefaultDialer.Dial(url+token(t, company), nil)
	require.NoError(t, err)
	defer live.Close()
	<-handled
	require.Eventually(t, func() bool { return hub.Connected(company) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Zero(t, hub.Connected(company))

	// The connected client is closed by the server.
	require.NoError(t, live.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = live.ReadMessage()
	require.Error(t, err)

	t.Run("new connections are closed instead of blocking", func(t *testing.T) {
		conn, _, err := gws.DefaultDialer.Dial(url+token(t, company), nil)
		require.NoError(t, err)
		defer conn.Close()

		select {
		case <-handled:
		case <-time.After(2 * time.Second):
			t.Fatal("handler blocked after shutdown")
		}
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err = conn.ReadMessage()
		assert.True(t, gws.IsCloseError(err, gws.CloseGoingAway), "unexpected error: %v", err)
		assert.Zero(t, hub.Connected(company))
	})

	t.Run("detach returns", func(t *testing.T) {
		returned := make(chan struct{})
		go func() {
			hub.detach(&Client{hub: hub, send: make(chan []byte)})
			close(returned)
		}()
		select {
		case <-returned:
		case <-time.After(2 * time.Second):
			t.Fatal("detach blocked after shutdown")
		}
	})
}
