// End-to-end checkout driver against a running storefront API and a
// Stripe test key: quote -> payment intent -> card confirmation ->
// order persistence -> duplicate-confirmation retry.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/smartblinds/internal/checkout"
	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/payment"
)

const baseURL = "http://localhost:8080"

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Stripe.Enabled() {
		fmt.Println("SMARTBLINDS_STRIPE_SECRET_KEY not set, demo needs a test key")
		os.Exit(1)
	}

	ctx := context.Background()

	// 1. Build the quote client-side.
	items := []checkout.CartItem{
		{
			ProductName: "Aria Smart Roller Blind",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("49.99"),
			Options:     map[string]string{"color": "graphite", "width": "120cm", "height": "160cm"},
		},
		{
			ProductName: "Solar Sensor Hub",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("20.02"),
		},
	}
	quote, err := checkout.BuildQuote(items, decimal.Zero, decimal.Zero)
	if err != nil {
		fmt.Printf("quote: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("1. quote total: %s EUR\n", quote.Total)

	// 2. Ask the storefront for a payment intent.
	var intentResp struct {
		Success         bool   `json:"success"`
		ClientSecret    string `json:"clientSecret"`
		PaymentIntentID string `json:"paymentIntentId"`
		Error           string `json:"error"`
	}
	post("/api/create-payment-intent", map[string]any{
		"amount":   quote.Total,
		"currency": "eur",
		"customer": map[string]string{
			"name":  "Demo Customer",
			"email": "demo@example.com",
			"phone": "+385 91 000 0000",
		},
		"items": []map[string]any{
			{"productName": items[0].ProductName, "quantity": items[0].Quantity},
			{"productName": items[1].ProductName, "quantity": items[1].Quantity},
		},
	}, &intentResp)
	if !intentResp.Success {
		fmt.Printf("create intent failed: %s\n", intentResp.Error)
		os.Exit(1)
	}
	fmt.Printf("2. intent created: %s\n", intentResp.PaymentIntentID)

	// 3. Confirm the card server-side with a Stripe test method (the
	// browser does this with the client secret in production).
	gw := payment.NewStripeGateway(cfg.Stripe.SecretKey)
	conf := checkout.NewCardConfirmation(gw, intentResp.PaymentIntentID)
	intent, err := conf.Submit(ctx, "pm_card_visa")
	if err != nil {
		fmt.Printf("card confirmation failed: %s\n", conf.LastError())
		os.Exit(1)
	}
	fmt.Printf("3. card confirmed, status: %s\n", intent.Status)

	// 4. Persist the order — twice, to show the idempotent retry.
	orderRef := fmt.Sprintf("ORD-DEMO-%d", time.Now().Unix())
	body := map[string]any{
		"orderId":         orderRef,
		"paymentIntentId": intent.ID,
		"customer": map[string]string{
			"name":    "Demo Customer",
			"email":   "demo@example.com",
			"phone":   "+385 91 000 0000",
			"address": "Ilica 1, Zagreb",
		},
		"items": []map[string]any{
			{"productName": items[0].ProductName, "quantity": 2, "unitPrice": "49.99", "options": items[0].Options},
			{"productName": items[1].ProductName, "quantity": 1, "unitPrice": "20.02"},
		},
		"totalAmount": quote.Total,
		"currency":    "eur",
	}

	for attempt := 1; attempt <= 2; attempt++ {
		var confirmResp struct {
			Success bool   `json:"success"`
			OrderID string `json:"orderId"`
			Created bool   `json:"created"`
			Error   string `json:"error"`
		}
		post("/api/confirm-payment", body, &confirmResp)
		if !confirmResp.Success {
			fmt.Printf("confirm failed: %s\n", confirmResp.Error)
			os.Exit(1)
		}
		fmt.Printf("4.%d order %s created=%v\n", attempt, confirmResp.OrderID, confirmResp.Created)
	}

	// 5. Look the order up the way the customer-facing page does.
	var listResp struct {
		Success bool `json:"success"`
		Orders  []struct {
			OrderRef string `json:"orderId"`
			Status   string `json:"status"`
		} `json:"orders"`
	}
	get("/api/get-orders?orderId="+orderRef, &listResp)
	if listResp.Success && len(listResp.Orders) == 1 {
		fmt.Printf("5. lookup ok: %s is %s\n", listResp.Orders[0].OrderRef, listResp.Orders[0].Status)
	} else {
		fmt.Println("5. lookup failed")
	}
}

func post(path string, body any, out any) {
	b, _ := json.Marshal(body)
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		fmt.Printf("POST %s: %v\n", path, err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, out)
}

func get(path string, out any) {
	resp, err := http.Get(baseURL + path)
	if err != nil {
		fmt.Printf("GET %s: %v\n", path, err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, out)
}
