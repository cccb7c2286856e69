package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fabrica/internal/models"
	"fabrica/internal/monitoring"
	"fabrica/internal/planner"
)

// defaultSequence is the sequence order codes are drawn from when the
// client does not name one.
const defaultSequence = "production_order"

// OrderAPI represents the main API handler for production orders
type OrderAPI struct {
	Router       *gin.Engine
	store        Store
	monitor      *monitoring.Monitor
	missingLimit int
}

// Store is the persistence interface the order form's backend operations
// are served from.
type Store interface {
	planner.Fetcher
	ListProducts(q string) ([]models.SemiFinishedProduct, error)
	PendingDemand() (planner.PendingDemand, error)
	NextCode(name, prefix string) (string, error)
	CreateOrder(order *models.ProductionOrder) error
	GetOrder(id uint) (*models.ProductionOrder, error)
	UpdateOrderStatus(id uint, to models.OrderStatus) (*models.ProductionOrder, error)
}

// NewOrderAPI creates a new order API instance
func NewOrderAPI(store Store, monitor *monitoring.Monitor, missingLimit int) *OrderAPI {
	if missingLimit <= 0 {
		missingLimit = planner.DefaultMissingLimit
	}
	api := &OrderAPI{
		Router:       gin.Default(),
		store:        store,
		monitor:      monitor,
		missingLimit: missingLimit,
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (a *OrderAPI) setupRoutes() {
	// Health check
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "fabrica API is running"})
	})

	// Form session over WebSocket
	a.Router.GET("/ws/preview", a.HandlePreviewSession)

	v1 := a.Router.Group("/api/v1")
	{
		// Product catalog
		v1.GET("/products", a.GetProducts)
		v1.GET("/products/:id/ingredients", a.GetProductIngredients)

		// Reservation inputs
		v1.GET("/demand/pending", a.GetPendingDemand)
		v1.POST("/codes/next", a.NextCode)

		// Order management
		v1.POST("/orders", a.CreateOrder)
		v1.POST("/orders/preview", a.PreviewOrder)
		v1.GET("/orders/:id", a.GetOrder)
		v1.PUT("/orders/:id", a.UpdateOrder)
		v1.DELETE("/orders/:id", a.CancelOrder)

		// Monitoring
		v1.GET("/metrics", a.GetMetrics)
	}
}

// Product catalog handlers

func (a *OrderAPI) GetProducts(c *gin.Context) {
	products, err := a.store.ListProducts(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (a *OrderAPI) GetProductIngredients(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	recipe, err := a.store.FetchRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, toRecipeDTO(recipe))
}

// Reservation input handlers

func (a *OrderAPI) GetPendingDemand(c *gin.Context) {
	demand, err := a.store.PendingDemand()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make(map[string]float64, len(demand))
	for materialID, qty := range demand {
		out[strconv.FormatUint(uint64(materialID), 10)] = qty.InexactFloat64()
	}
	c.JSON(http.StatusOK, out)
}

func (a *OrderAPI) NextCode(c *gin.Context) {
	var req struct {
		Name   string `json:"name"`
		Prefix string `json:"prefix"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		req.Name = defaultSequence
	}
	code, err := a.store.NextCode(req.Name, req.Prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// Order management handlers

func (a *OrderAPI) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := req.toModel()
	if err := a.store.CreateOrder(order); err != nil {
		// The form stays open client-side; the user may retry.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a.monitor.Increment("orders_created")
	monitoring.OrdersCreated.Inc()
	c.JSON(http.StatusCreated, order)
}

func (a *OrderAPI) GetOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := a.store.GetOrder(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (a *OrderAPI) UpdateOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to := models.OrderStatus(req.Status)
	if to != models.OrderStatusCompleted && to != models.OrderStatusCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be completed or cancelled"})
		return
	}

	order, err := a.store.UpdateOrderStatus(id, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (a *OrderAPI) CancelOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	if _, err := a.store.UpdateOrderStatus(id, models.OrderStatusCancelled); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully"})
}

// PreviewOrder computes a one-shot material preview for a draft order. The
// pending-demand snapshot and recipe cache live only for this request; the
// WebSocket session keeps them across edits instead.
func (a *OrderAPI) PreviewOrder(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolver := planner.NewResolver(a.store)
	resolver.OnError = func(productID uint, err error) {
		monitoring.RecipeFetchFailures.Inc()
	}
	lines := req.toLines()
	for _, line := range lines {
		resolver.Ensure(c.Request.Context(), line.ProductID)
	}

	pending := a.fetchPendingDemand()
	c.JSON(http.StatusOK, a.computePreview(lines, resolver.Snapshot(), pending))
}

// Monitoring handlers

func (a *OrderAPI) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, a.monitor.GetMetrics())
}

// Private helper methods

// fetchPendingDemand takes the one-time snapshot for a preview. Failure
// degrades to an empty snapshot rather than surfacing an error: the preview
// is advisory and the form must stay usable.
func (a *OrderAPI) fetchPendingDemand() planner.PendingDemand {
	pending, err := a.store.PendingDemand()
	if err != nil {
		a.monitor.Increment("pending_demand_failures")
		return planner.PendingDemand{}
	}
	return pending
}

func (a *OrderAPI) computePreview(lines []planner.DraftLine, catalog planner.Catalog, pending planner.PendingDemand) previewResponse {
	a.monitor.Increment("preview_computations")
	monitoring.PreviewComputations.Inc()

	previews := make([]linePreviewDTO, len(lines))
	for i := range lines {
		previews[i] = toLinePreviewDTO(planner.ComputeLinePreview(i, lines, catalog, pending))
	}
	summary := planner.Summarize(lines, catalog, pending, a.missingLimit)
	return previewResponse{Lines: previews, Summary: toSummaryDTO(summary)}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}
