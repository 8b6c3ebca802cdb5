package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	codeOK        = "ok"
	codeTransport = "transport_error"
	codeDecode    = "decode_error"
)

type itemPayload struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type orderPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ordersClient — минимальный клиент REST API заказов.
type ordersClient struct {
	baseURL string
	http    *http.Client
}

func newOrdersClient(baseURL string, httpClient *http.Client) *ordersClient {
	return &ordersClient{baseURL: baseURL, http: httpClient}
}

func (c *ordersClient) createOrder(items []itemPayload, col *collector) (string, string, error) {
	var order orderPayload
	code, err := c.call(http.MethodPost, "/api/v1/orders", map[string]any{"items": items}, http.StatusCreated, &order, "CreateOrder", col)
	if err != nil {
		return "", code, err
	}
	if order.ID == "" {
		return "", codeDecode, errors.New("create response returned empty order id")
	}
	return order.ID, code, nil
}

func (c *ordersClient) updateItems(orderID string, items []itemPayload, col *collector) (string, error) {
	return c.call(http.MethodPut, "/api/v1/orders/"+orderID, map[string]any{"items": items}, http.StatusOK, nil, "UpdateOrder", col)
}

func (c *ordersClient) cancelOrder(orderID string, col *collector) (string, error) {
	var order orderPayload
	code, err := c.call(http.MethodDelete, "/api/v1/orders/"+orderID, nil, http.StatusOK, &order, "CancelOrder", col)
	if err != nil {
		return code, err
	}
	if order.Status != "cancelled" {
		return codeDecode, fmt.Errorf("unexpected status after cancel: %q", order.Status)
	}
	return code, nil
}

// call выполняет запрос и записывает его длительность и код в collector.
// Код: HTTP-статус строкой либо codeTransport/codeDecode.
func (c *ordersClient) call(method, path string, body any, want int, out any, name string, col *collector) (code string, err error) {
	start := time.Now()
	defer func() { col.record(name, time.Since(start), code) }()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return codeDecode, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return codeTransport, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return codeTransport, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return strconv.Itoa(resp.StatusCode), fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return codeDecode, fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return codeOK, nil
}
