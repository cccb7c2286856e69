package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabrica/internal/models"
	"fabrica/internal/monitoring"
	"fabrica/internal/planner"
)

type stubStore struct {
	recipes     map[uint]*planner.Recipe
	pending     planner.PendingDemand
	orders      map[uint]*models.ProductionOrder
	nextID      uint
	codes       int
	failPending bool
	failCreate  bool
}

// newStubStore seeds the reservation scenario: product 10 (batch size 5)
// consumes 10 of material X (id 1, stock 100, cost 2) per batch; other
// pending orders already claim 20 of X.
func newStubStore() *stubStore {
	return &stubStore{
		recipes: map[uint]*planner.Recipe{
			10: {
				ProductID: 10,
				BatchSize: decimal.NewFromInt(5),
				Ingredients: []planner.Ingredient{{
					ID:               1,
					Name:             "X",
					Unit:             "kg",
					QuantityPerBatch: decimal.NewFromInt(10),
					AvailableStock:   decimal.NewFromInt(100),
					UnitCost:         decimal.NewFromInt(2),
				}},
			},
		},
		pending: planner.PendingDemand{1: decimal.NewFromInt(20)},
		orders:  make(map[uint]*models.ProductionOrder),
	}
}

func (s *stubStore) FetchRecipe(ctx context.Context, productID uint) (*planner.Recipe, error) {
	recipe, ok := s.recipes[productID]
	if !ok {
		return nil, errors.New("no such product")
	}
	return recipe, nil
}

func (s *stubStore) ListProducts(q string) ([]models.SemiFinishedProduct, error) {
	return []models.SemiFinishedProduct{{Name: "widget base", Unit: "pc", BatchSize: 5}}, nil
}

func (s *stubStore) PendingDemand() (planner.PendingDemand, error) {
	if s.failPending {
		return nil, errors.New("backend unavailable")
	}
	return s.pending, nil
}

func (s *stubStore) NextCode(name, prefix string) (string, error) {
	if prefix == "" {
		prefix = "OP"
	}
	s.codes++
	return fmt.Sprintf("%s%06d", prefix, s.codes), nil
}

func (s *stubStore) CreateOrder(order *models.ProductionOrder) error {
	if s.failCreate {
		return errors.New("database unavailable")
	}
	if order.Code == "" {
		code, _ := s.NextCode("production_order", "")
		order.Code = code
	}
	s.nextID++
	order.ID = s.nextID
	order.Status = string(models.OrderStatusPending)
	s.orders[order.ID] = order
	return nil
}

func (s *stubStore) GetOrder(id uint) (*models.ProductionOrder, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return order, nil
}

func (s *stubStore) UpdateOrderStatus(id uint, to models.OrderStatus) (*models.ProductionOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !models.ValidTransition(models.OrderStatus(order.Status), to) {
		return nil, fmt.Errorf("cannot move from %s to %s", order.Status, to)
	}
	order.Status = string(to)
	return order, nil
}

func newTestAPI(store Store) *OrderAPI {
	gin.SetMode(gin.TestMode)
	return NewOrderAPI(store, monitoring.NewMonitor(), 5)
}

func postJSON(t *testing.T, api *OrderAPI, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	return w
}

func TestPreviewEndpointSequentialReservation(t *testing.T) {
	api := newTestAPI(newStubStore())

	w := postJSON(t, api, "/api/v1/orders/preview", previewRequest{Lines: []draftLineDTO{
		{ProductID: 10, Quantity: 5},
		{ProductID: 10, Quantity: 10},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 2)

	first := resp.Lines[0]
	require.True(t, first.Resolved)
	assert.Equal(t, 10.0, first.Requirements[0].Required)
	assert.Equal(t, 80.0, first.Requirements[0].AdjustedAvailable)

	second := resp.Lines[1]
	require.True(t, second.Resolved)
	assert.Equal(t, 20.0, second.Requirements[0].Required)
	assert.Equal(t, 70.0, second.Requirements[0].AdjustedAvailable)
	assert.False(t, second.Requirements[0].Short)

	// (10 + 20) units of X at cost 2
	assert.Equal(t, 60.0, resp.Summary.TotalEstimatedCost)
	assert.Empty(t, resp.Summary.MissingMaterials)
}

func TestPreviewUnknownProductDegrades(t *testing.T) {
	api := newTestAPI(newStubStore())

	w := postJSON(t, api, "/api/v1/orders/preview", previewRequest{Lines: []draftLineDTO{
		{ProductID: 99, Quantity: 5},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 1)
	assert.False(t, resp.Lines[0].Resolved)
	assert.Equal(t, 0.0, resp.Summary.TotalEstimatedCost)
}

func TestPreviewPendingDemandFailureDegrades(t *testing.T) {
	store := newStubStore()
	store.failPending = true
	api := newTestAPI(store)

	w := postJSON(t, api, "/api/v1/orders/preview", previewRequest{Lines: []draftLineDTO{
		{ProductID: 10, Quantity: 5},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// no pending snapshot: raw stock minus nothing
	assert.Equal(t, 100.0, resp.Lines[0].Requirements[0].AdjustedAvailable)
}

func TestCreateOrder(t *testing.T) {
	api := newTestAPI(newStubStore())

	w := postJSON(t, api, "/api/v1/orders", createOrderRequest{Items: []createOrderItemRequest{
		{ProductID: 10, Quantity: 5},
	}})
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.ProductionOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "OP000001", order.Code)
	assert.Equal(t, string(models.OrderStatusPending), order.Status)
}

func TestCreateOrderRejectsBadRequests(t *testing.T) {
	api := newTestAPI(newStubStore())

	w := postJSON(t, api, "/api/v1/orders", createOrderRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one item")

	w = postJSON(t, api, "/api/v1/orders", createOrderRequest{Items: []createOrderItemRequest{
		{ProductID: 0, Quantity: 5},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, api, "/api/v1/orders", createOrderRequest{Items: []createOrderItemRequest{
		{ProductID: 10, Quantity: 0},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderFailureKeepsFormOpen(t *testing.T) {
	store := newStubStore()
	store.failCreate = true
	api := newTestAPI(store)

	w := postJSON(t, api, "/api/v1/orders", createOrderRequest{Items: []createOrderItemRequest{
		{ProductID: 10, Quantity: 5},
	}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "database unavailable")
}

func TestOrderLifecycle(t *testing.T) {
	store := newStubStore()
	api := newTestAPI(store)

	w := postJSON(t, api, "/api/v1/orders", createOrderRequest{Items: []createOrderItemRequest{
		{ProductID: 10, Quantity: 5},
	}})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/1", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// a closed order stays closed
	req = httptest.NewRequest(http.MethodPut, "/api/v1/orders/1", strings.NewReader(`{"status":"cancelled"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	api.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNextCodeEndpoint(t *testing.T) {
	api := newTestAPI(newStubStore())

	w := postJSON(t, api, "/api/v1/codes/next", map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OP000001")

	w = postJSON(t, api, "/api/v1/codes/next", map[string]string{"prefix": "FT"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FT000002")
}

func TestGetProductIngredients(t *testing.T) {
	api := newTestAPI(newStubStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/10/ingredients", nil)
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var recipe recipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, 5.0, recipe.BatchSize)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "X", recipe.Ingredients[0].Name)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/99/ingredients", nil)
	w = httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewWebSocketSession(t *testing.T) {
	api := newTestAPI(newStubStore())
	server := httptest.NewServer(api.Router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/preview"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.WriteJSON(sessionMessage{Type: "update", Lines: []draftLineDTO{
		{ProductID: 10, Quantity: 5},
		{ProductID: 10, Quantity: 10},
	}})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
		previewResponse
	}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "preview", msg.Type)
	require.Len(t, msg.Lines, 2)
	assert.Equal(t, 80.0, msg.Lines[0].Requirements[0].AdjustedAvailable)
	assert.Equal(t, 70.0, msg.Lines[1].Requirements[0].AdjustedAvailable)

	// an unknown message type reports an error but keeps the session alive
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var errMsg errorMessage
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, "error", errMsg.Type)
}
