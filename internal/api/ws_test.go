package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestWebSocketReceivesSubscribedTableEvents(t *testing.T) {
	server, st := setupAPITest(t)

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer conn.Close()

	// Subscribe to trade changes only.
	assert.NoError(t, conn.WriteJSON(realtime.ClientCommand{Action: "subscribe", Table: "trades"}))

	// The subscribe command races the publish below; give the hub a moment.
	time.Sleep(100 * time.Millisecond)

	trade := &models.Trade{
		OrderNo:   "WS-1",
		StockCode: "005930",
		StockName: "Samsung",
		OrderType: models.OrderTypeBuy,
		Status:    models.OrderStatusPending,
		Quantity:  1,
		Price:     100,
	}
	_, err = st.UpsertTrade(context.Background(), trade)
	assert.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	assert.NoError(t, err)

	var ev realtime.Event
	assert.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, realtime.EventInsert, ev.Type)
	assert.Equal(t, "trades", ev.Table)

	var got models.Trade
	assert.NoError(t, ev.Decode(&got))
	assert.Equal(t, "WS-1", got.OrderNo)
}

func TestWebSocketIgnoresOtherTables(t *testing.T) {
	server, st := setupAPITest(t)

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.WriteJSON(realtime.ClientCommand{Action: "subscribe", Table: "portfolio"}))
	time.Sleep(100 * time.Millisecond)

	trade := &models.Trade{
		OrderNo: "WS-2", StockCode: "005930", StockName: "Samsung",
		OrderType: models.OrderTypeBuy, Status: models.OrderStatusPending,
		Quantity: 1, Price: 100,
	}
	_, err = st.UpsertTrade(context.Background(), trade)
	assert.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err) // deadline: nothing was delivered
}
