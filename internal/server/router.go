package server

import (
	"github.com/kataras/iris/v12"
	"github.com/mediocregopher/radix/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/datamodels/order"
	"github.com/example/smartblinds/internal/infra/mq"
	"github.com/example/smartblinds/internal/infra/redis"
	"github.com/example/smartblinds/internal/middleware"
	"github.com/example/smartblinds/internal/notify"
	"github.com/example/smartblinds/internal/payment"
	"github.com/example/smartblinds/internal/repository/mysql"
	"github.com/example/smartblinds/internal/service"
)

type confirmItemRequest struct {
	ProductName string            `json:"productName"`
	Quantity    int               `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unitPrice"`
	Options     map[string]string `json:"options"`
}

type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// publicDeps carries the wired services into the public route mount.
type publicDeps struct {
	payments *service.PaymentService
	orders   *service.OrderService
	queries  *service.QueryService
	notifier *service.NotificationService
	redis    radix.Client
}

// RegisterRoutes wires the public storefront API: the checkout flow
// (intent creation, confirmation), customer order lookup and the
// direct notification triggers.
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	var gw payment.Gateway
	if cfg.Stripe.Enabled() {
		gw = payment.NewStripeGateway(cfg.Stripe.SecretKey)
	} else {
		zap.L().Warn("stripe not configured, payment endpoints degraded")
	}

	orderRepo := mysql.NewOrderRepository(db)
	mailer := notify.NewMailer(&cfg.SMTP, zap.L())
	notifier := service.NewNotificationService(mqConn, orderRepo, mailer, zap.L())

	mountPublicAPI(app, publicDeps{
		payments: service.NewPaymentService(gw, cfg.Stripe.DefaultCurrency, zap.L()),
		orders:   service.NewOrderService(orderRepo, gw, notifier, redisClient, zap.L()),
		queries:  service.NewQueryService(orderRepo, zap.L()),
		notifier: notifier,
		redis:    redisClient,
	})
}

func mountPublicAPI(app *iris.Application, d publicDeps) {
	// A wrong method on a registered path must answer 405, not 404.
	app.Configure(iris.WithFireMethodNotAllowed)
	app.UseRouter(middleware.CORS())
	api := app.Party("/api")
	api.AllowMethods(iris.MethodOptions)

	api.Get("/health", func(ctx iris.Context) {
		respondOK(ctx, iris.Map{"message": "ok"})
	})

	// Obtain a gateway client secret so the browser can collect card
	// details without the backend ever seeing them. No persistence.
	api.Post("/create-payment-intent", middleware.CheckoutRateLimit(d.redis, 30), func(ctx iris.Context) {
		var req struct {
			Amount   decimal.Decimal         `json:"amount"`
			Currency string                  `json:"currency"`
			Customer service.CustomerSummary `json:"customer"`
			Items    []service.IntentItem    `json:"items"`
			Metadata map[string]string       `json:"metadata"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			respondBadRequest(ctx, "invalid request body")
			return
		}
		result, err := d.payments.CreateIntent(ctx.Request().Context(), service.CreateIntentRequest{
			Amount:   req.Amount,
			Currency: req.Currency,
			Customer: req.Customer,
			Items:    req.Items,
			Metadata: req.Metadata,
		})
		if err != nil {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{
			"clientSecret":    result.ClientSecret,
			"paymentIntentId": result.PaymentIntentID,
		})
	})

	// Persist the order after a successful charge. Safe to retry with
	// the same orderId: the existing order is returned instead of a
	// duplicate.
	api.Post("/confirm-payment", func(ctx iris.Context) {
		var req struct {
			OrderID         string               `json:"orderId"`
			PaymentIntentID string               `json:"paymentIntentId"`
			Customer        customerRequest      `json:"customer"`
			Items           []confirmItemRequest `json:"items"`
			TotalAmount     decimal.Decimal      `json:"totalAmount"`
			TaxAmount       decimal.Decimal      `json:"taxAmount"`
			ShippingCost    decimal.Decimal      `json:"shippingCost"`
			Currency        string               `json:"currency"`
			Notes           string               `json:"notes"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			respondBadRequest(ctx, "invalid request body")
			return
		}

		confirmReq := service.ConfirmOrderRequest{
			OrderRef:        req.OrderID,
			PaymentIntentID: req.PaymentIntentID,
			Customer: service.ConfirmCustomer{
				Name:    req.Customer.Name,
				Email:   req.Customer.Email,
				Phone:   req.Customer.Phone,
				Address: req.Customer.Address,
			},
			TotalAmount:  req.TotalAmount,
			TaxAmount:    req.TaxAmount,
			ShippingCost: req.ShippingCost,
			Currency:     req.Currency,
			Notes:        req.Notes,
		}
		for _, it := range req.Items {
			confirmReq.Items = append(confirmReq.Items, service.ConfirmItem{
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Options:     it.Options,
			})
		}

		result, err := d.orders.ConfirmOrder(ctx.Request().Context(), confirmReq)
		if err != nil {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{
			"orderId":       result.Order.OrderRef,
			"status":        result.Order.Status,
			"paymentStatus": payment.IntentSucceeded,
			"created":       result.Created,
		})
	})

	// Customer-facing lookup plus admin-style listing. GET with query
	// params or POST with a JSON body.
	listOrders := func(ctx iris.Context) {
		var f order.Filter
		limit := ctx.URLParamIntDefault("limit", 0)
		offset := ctx.URLParamIntDefault("offset", 0)
		f.OrderRef = ctx.URLParam("orderId")
		f.Email = ctx.URLParam("email")

		if ctx.Method() == iris.MethodPost {
			var req struct {
				OrderID string `json:"orderId"`
				Email   string `json:"email"`
				Limit   int    `json:"limit"`
				Offset  int    `json:"offset"`
			}
			if err := ctx.ReadJSON(&req); err != nil {
				respondBadRequest(ctx, "invalid request body")
				return
			}
			f.OrderRef, f.Email, limit, offset = req.OrderID, req.Email, req.Limit, req.Offset
		}

		listing, err := d.queries.List(ctx.Request().Context(), f, limit, offset)
		if err != nil {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{
			"orders": listing.Orders,
			"pagination": iris.Map{
				"limit":  listing.Limit,
				"offset": listing.Offset,
				"total":  listing.Total,
			},
		})
	}
	api.Get("/get-orders", listOrders)
	api.Post("/get-orders", listOrders)

	// Direct dispatcher triggers. "skipped" is a success: running
	// without a mail transport is a supported configuration.
	api.Post("/send-order-confirmation", func(ctx iris.Context) {
		var req struct {
			OrderID string `json:"orderId"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.OrderID == "" {
			respondBadRequest(ctx, "orderId is required")
			return
		}
		result, err := d.notifier.Dispatch(ctx.Request().Context(), service.NotificationJob{
			Kind:     service.NotifyOrderReceived,
			OrderRef: req.OrderID,
		})
		if err != nil && result == notify.ResultFailed {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{"result": result})
	})

	api.Post("/send-status-update", func(ctx iris.Context) {
		var req struct {
			OrderID        string `json:"orderId"`
			Status         string `json:"status"`
			PreviousStatus string `json:"previousStatus"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.OrderID == "" {
			respondBadRequest(ctx, "orderId is required")
			return
		}
		if _, ok := order.ParseStatus(req.Status); !ok {
			respondBadRequest(ctx, "invalid status")
			return
		}
		result, err := d.notifier.Dispatch(ctx.Request().Context(), service.NotificationJob{
			Kind:           service.NotifyStatusChanged,
			OrderRef:       req.OrderID,
			PreviousStatus: req.PreviousStatus,
			NewStatus:      req.Status,
		})
		if err != nil && result == notify.ResultFailed {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{"result": result})
	})
}
