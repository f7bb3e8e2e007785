package server

import (
	"context"
	"strings"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/auth"
	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/datamodels/order"
	"github.com/example/smartblinds/internal/infra/mq"
	"github.com/example/smartblinds/internal/infra/redis"
	"github.com/example/smartblinds/internal/middleware"
	"github.com/example/smartblinds/internal/notify"
	"github.com/example/smartblinds/internal/repository/mysql"
	"github.com/example/smartblinds/internal/service"
)

// adminDeps carries the wired services into the back-office mount.
type adminDeps struct {
	orders  *service.OrderService
	queries *service.QueryService
	admins  *service.AdminService
	jwt     *config.JWTConfig
}

// RegisterAdminRoutes wires the back-office API, usually on :8081,
// separate from the public storefront server.
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	orderRepo := mysql.NewOrderRepository(db)
	adminRepo := mysql.NewAdminUserRepository(db)
	mailer := notify.NewMailer(&cfg.SMTP, zap.L())
	notifier := service.NewNotificationService(mqConn, orderRepo, mailer, zap.L())
	adminSvc := service.NewAdminService(adminRepo, &cfg.JWT, zap.L())

	if err := adminSvc.EnsureSeedAdmin(context.Background()); err != nil {
		zap.L().Warn("seed admin check failed", zap.Error(err))
	}

	mountAdminAPI(app, adminDeps{
		orders:  service.NewOrderService(orderRepo, nil, notifier, redisClient, zap.L()),
		queries: service.NewQueryService(orderRepo, zap.L()),
		admins:  adminSvc,
		jwt:     &cfg.JWT,
	})
}

func mountAdminAPI(app *iris.Application, d adminDeps) {
	// A wrong method on a registered path must answer 405, not 404.
	app.Configure(iris.WithFireMethodNotAllowed)
	app.UseRouter(middleware.CORS())
	app.Get("/metrics", iris.FromStd(service.MetricsHandler()))

	api := app.Party("/api")
	api.AllowMethods(iris.MethodOptions)

	api.Get("/health", func(ctx iris.Context) {
		respondOK(ctx, iris.Map{"message": "ok"})
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			respondBadRequest(ctx, "invalid request body")
			return
		}
		result, err := d.admins.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"success": false, "error": "invalid username or password"})
			return
		}
		respondOK(ctx, iris.Map{
			"token":              result.Token,
			"admin":              result.Admin,
			"mustChangePassword": result.MustChangePassword,
		})
	})

	authAPI := api.Party("/", func(ctx iris.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"success": false, "error": "missing token"})
			return
		}
		claims, err := auth.ParseToken(d.jwt, token)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"success": false, "error": "invalid token"})
			return
		}
		ctx.Values().Set("admin_id", claims.AdminID)
		ctx.Values().Set("username", claims.Username)
		ctx.Next()
	})

	listOrders := func(ctx iris.Context) {
		f := order.Filter{
			OrderRef: ctx.URLParam("orderId"),
			Email:    ctx.URLParam("email"),
		}
		limit := ctx.URLParamIntDefault("limit", 0)
		offset := ctx.URLParamIntDefault("offset", 0)

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
	authAPI.Get("/get-orders", listOrders)
	authAPI.Post("/get-orders", listOrders)

	// Status transition. Equal status is a silent no-op; an actual
	// change fires exactly one notification whose failure never
	// changes this response.
	authAPI.Post("/update-order-status", func(ctx iris.Context) {
		var req struct {
			OrderID string `json:"orderId"`
			Status  string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.OrderID == "" {
			respondBadRequest(ctx, "orderId and status are required")
			return
		}
		result, err := d.orders.UpdateStatus(ctx.Request().Context(), req.OrderID, req.Status)
		if err != nil {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{
			"order":          result.Order,
			"previousStatus": result.PreviousStatus,
			"newStatus":      result.NewStatus,
			"changed":        result.Changed,
		})
	})

	authAPI.Delete("/delete-order", func(ctx iris.Context) {
		ref := ctx.URLParam("orderId")
		if ref == "" {
			var req struct {
				OrderID string `json:"orderId"`
			}
			if err := ctx.ReadJSON(&req); err == nil {
				ref = req.OrderID
			}
		}
		if ref == "" {
			respondBadRequest(ctx, "orderId is required")
			return
		}
		deleted, err := d.orders.DeleteOrder(ctx.Request().Context(), ref)
		if err != nil {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{
			"deletedOrder": iris.Map{
				"orderId":       deleted.OrderRef,
				"customerEmail": deleted.CustomerEmail,
				"totalCents":    deleted.TotalCents,
				"status":        deleted.Status,
				"items":         len(deleted.Items),
			},
		})
	})

	authAPI.Post("/change-password", func(ctx iris.Context) {
		var req struct {
			OldPassword string `json:"oldPassword"`
			NewPassword string `json:"newPassword"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			respondBadRequest(ctx, "invalid request body")
			return
		}
		username := ctx.Values().GetString("username")
		if err := d.admins.ChangePassword(ctx.Request().Context(), username, req.OldPassword, req.NewPassword); err != nil {
			respondErr(ctx, err)
			return
		}
		respondOK(ctx, iris.Map{"message": "password updated"})
	})
}
