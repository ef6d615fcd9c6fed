package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	businessH "github.com/fekuna/omnipos-backoffice-service/internal/business/handler"
	categoryH "github.com/fekuna/omnipos-backoffice-service/internal/category/handler"
	dashboardH "github.com/fekuna/omnipos-backoffice-service/internal/dashboard/handler"
	deliveryH "github.com/fekuna/omnipos-backoffice-service/internal/delivery/handler"
	identityH "github.com/fekuna/omnipos-backoffice-service/internal/identity/handler"
	inventoryH "github.com/fekuna/omnipos-backoffice-service/internal/inventory/handler"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	orderH "github.com/fekuna/omnipos-backoffice-service/internal/order/handler"
	productH "github.com/fekuna/omnipos-backoffice-service/internal/product/handler"
	reportH "github.com/fekuna/omnipos-backoffice-service/internal/report/handler"
	superadminH "github.com/fekuna/omnipos-backoffice-service/internal/superadmin/handler"
	teamH "github.com/fekuna/omnipos-backoffice-service/internal/team/handler"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Identity   *identityH.IdentityHandler
	Business   *businessH.BusinessHandler
	Category   *categoryH.CategoryHandler
	Inventory  *inventoryH.InventoryHandler
	Product    *productH.ProductHandler
	Order      *orderH.OrderHandler
	Delivery   *deliveryH.DeliveryHandler
	Team       *teamH.TeamHandler
	Superadmin *superadminH.SuperadminHandler
	Dashboard  *dashboardH.DashboardHandler
	Report     *reportH.ReportHandler
}

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterConfig struct {
	AppEnv      string
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig, h *Handlers, mw *auth.Middleware, db Pinger, log logger.ZapLogger) *gin.Engine {
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(Recovery(log), AccessLog(log))
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", healthCheck(db, log))

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", h.Identity.SignUp)
		authRoutes.POST("/login", h.Identity.Login)
	}

	public := api.Group("/public")
	{
		public.GET("/currencies", h.Business.Currencies)
		public.GET("/delivery/:token", h.Delivery.Get)
		public.POST("/delivery/:token/confirm", h.Delivery.Confirm)
	}

	authed := api.Group("", mw.Authenticate())
	{
		authed.GET("/me", h.Identity.Me)
		authed.PUT("/me/profile", h.Identity.UpdateProfile)
		authed.PUT("/me/password", h.Identity.ChangePassword)
		authed.POST("/businesses", h.Business.Onboard)

		authed.POST("/functions/delete-user", h.Team.DeleteUser)
		authed.POST("/functions/admin-update-profile", auth.RequirePlatformAdmin(), h.Superadmin.UpdateUserProfile)
	}

	admin := authed.Group("/admin", auth.RequirePlatformAdmin())
	{
		admin.GET("/stats", h.Superadmin.Stats)
		admin.GET("/businesses", h.Superadmin.ListBusinesses)
		admin.GET("/businesses/:id", h.Superadmin.GetBusiness)
		admin.PUT("/businesses/:id", h.Superadmin.UpdateBusiness)
		admin.GET("/users", h.Superadmin.ListUsers)
	}

	biz := authed.Group("", auth.RequireBusiness())
	biz.GET("/business", h.Business.Get)

	owner := biz.Group("", auth.RequireRole(model.RoleOwner))
	{
		owner.PUT("/business", h.Business.UpdateSettings)
		owner.GET("/team", h.Team.List)
		owner.POST("/team/invite", h.Team.Invite)
		owner.DELETE("/team/members/:role_id", h.Team.Remove)
	}

	staff := biz.Group("", auth.RequireRole(model.RoleOwner, model.RoleAdmin))
	{
		staff.GET("/business/budget", h.Business.GetBudget)
		staff.PUT("/business/budget", h.Business.UpdateBudget)

		inv := staff.Group("/inventory")
		inv.GET("", h.Inventory.List)
		inv.POST("", h.Inventory.Create)
		inv.GET("/low-stock", h.Inventory.LowStock)
		inv.GET("/movements", h.Inventory.Movements)
		inv.GET("/categories", h.Category.List)
		inv.PUT("/categories/rename", h.Category.Rename)
		inv.GET("/:id", h.Inventory.Get)
		inv.PUT("/:id", h.Inventory.Update)
		inv.DELETE("/:id", h.Inventory.Delete)
		inv.POST("/:id/adjust", h.Inventory.Adjust)
		inv.POST("/:id/image", h.Inventory.UploadImage)

		prod := staff.Group("/products")
		prod.POST("/quote", h.Product.Quote)
		prod.POST("", h.Product.Create)
		prod.GET("", h.Product.List)
		prod.GET("/:id", h.Product.Get)
		prod.PUT("/:id", h.Product.Update)
		prod.DELETE("/:id", h.Product.Delete)

		ord := staff.Group("/orders")
		ord.POST("", h.Order.Create)
		ord.GET("", h.Order.List)
		ord.GET("/kanban", h.Order.Kanban)
		ord.GET("/:id", h.Order.Get)
		ord.PUT("/:id", h.Order.Update)
		ord.PUT("/:id/status", h.Order.ChangeStatus)
		ord.PUT("/:id/driver", h.Order.AssignDriver)

		staff.GET("/dashboard", h.Dashboard.Summary)
		staff.GET("/dashboard/checklist", h.Dashboard.Checklist)
		staff.GET("/reports/orders", h.Report.Orders)
	}

	driver := biz.Group("/driver", auth.RequireRole(model.RoleDriver))
	driver.GET("/orders", h.Order.DriverOrders)

	return r
}

func healthCheck(db Pinger, log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "database connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "backoffice"})
	}
}
