package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// ApiClient handles API requests to the fabrica order service
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("FABRICA_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: baseURL,
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	return c.do(http.MethodGet, "/health", nil, nil)
}

// Product mirrors the server's semi-finished product record
type Product struct {
	ID             uint
	Name           string
	Unit           string
	BatchSize      float64
	AvailableStock float64
}

// Products fetches the searchable product list
func (c *ApiClient) Products(q string) ([]Product, error) {
	path := "/api/v1/products"
	if q != "" {
		path += "?q=" + q
	}
	var products []Product
	if err := c.do(http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Recipe mirrors the ingredient list the server resolves per product
type Recipe struct {
	ProductID   uint               `json:"product_id"`
	BatchSize   float64            `json:"batch_size"`
	Ingredients []RecipeIngredient `json:"ingredients"`
}

type RecipeIngredient struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Unit             string  `json:"unit"`
	QuantityPerBatch float64 `json:"quantity_per_batch"`
	AvailableStock   float64 `json:"available_stock"`
	UnitCost         float64 `json:"unit_cost"`
}

// Ingredients fetches a product's recipe with stock figures
func (c *ApiClient) Ingredients(productID uint) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/products/%d/ingredients", productID), nil, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// DraftLine is one (product, quantity) row sent for preview or creation
type DraftLine struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// Preview mirrors the server's draft-order preview response
type Preview struct {
	Lines []struct {
		Resolved     bool `json:"resolved"`
		Requirements []struct {
			Name              string  `json:"name"`
			Unit              string  `json:"unit"`
			Required          float64 `json:"required"`
			AdjustedAvailable float64 `json:"adjusted_available"`
			Short             bool    `json:"short"`
		} `json:"requirements"`
		EstimatedCost float64 `json:"estimated_cost"`
	} `json:"lines"`
	Summary struct {
		TotalEstimatedCost float64 `json:"total_estimated_cost"`
		MissingMaterials   []struct {
			Name      string  `json:"name"`
			Needed    float64 `json:"needed"`
			Available float64 `json:"available"`
			Unit      string  `json:"unit"`
		} `json:"missing_materials"`
		MissingOmitted int `json:"missing_omitted"`
	} `json:"summary"`
}

// PreviewOrder asks the server for a material preview of a draft
func (c *ApiClient) PreviewOrder(lines []DraftLine) (*Preview, error) {
	var preview Preview
	body := map[string]interface{}{"lines": lines}
	if err := c.do(http.MethodPost, "/api/v1/orders/preview", body, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Order mirrors the server's production order record
type Order struct {
	ID     uint
	Code   string
	Status string
	Items  []struct {
		ProductID uint
		Quantity  float64
		Position  int
	}
}

// CreateOrder submits a production order
func (c *ApiClient) CreateOrder(lines []DraftLine, notes string) (*Order, error) {
	items := make([]map[string]interface{}, len(lines))
	for i, line := range lines {
		items[i] = map[string]interface{}{"product_id": line.ProductID, "quantity": line.Quantity}
	}
	var order Order
	body := map[string]interface{}{"items": items, "notes": notes}
	if err := c.do(http.MethodPost, "/api/v1/orders", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches an order with its items
func (c *ApiClient) GetOrder(id uint) (*Order, error) {
	var order Order
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus completes or cancels a pending order
func (c *ApiClient) UpdateOrderStatus(id uint, status string) (*Order, error) {
	var order Order
	body := map[string]string{"status": status}
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/v1/orders/%d", id), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// NextCode draws the next code from a named sequence
func (c *ApiClient) NextCode(name, prefix string) (string, error) {
	var resp struct {
		Code string `json:"code"`
	}
	body := map[string]string{"name": name, "prefix": prefix}
	if err := c.do(http.MethodPost, "/api/v1/codes/next", body, &resp); err != nil {
		return "", err
	}
	return resp.Code, nil
}

// do performs a request and decodes the JSON response into out
func (c *ApiClient) do(method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
