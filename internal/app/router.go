// internal/app/router.go
package app

import (
	"github.com/gin-gonic/gin"

	authHandler "beedab-service/internal/handlers/auth"
	billingHandler "beedab-service/internal/handlers/billing"
	listingHandler "beedab-service/internal/handlers/listing"
	wsHandler "beedab-service/internal/handlers/ws"
	"beedab-service/internal/middleware"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	PlanHandler    *billingHandler.PlanHandler
	BillingHandler *billingHandler.BillingHandler
	ListingHandler *listingHandler.ListingHandler
	WSHandler      *wsHandler.WSHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.AuthMiddleware.Auth(), h.WSHandler.Connect)

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/refresh", h.AuthHandler.Refresh)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
	}

	// ==================== Billing ====================
	billing := api.Group("/billing")
	{
		// Public plan catalog
		billing.GET("/plans", h.PlanHandler.ListPlans)

		// Subscriber endpoints
		billingAuth := billing.Group("")
		billingAuth.Use(h.AuthMiddleware.Auth())
		{
			billingAuth.POST("/subscribe", h.BillingHandler.Subscribe)
			billingAuth.GET("/me", h.BillingHandler.Me)
		}

		// Admin endpoints
		billingAdmin := billing.Group("")
		billingAdmin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
		{
			billingAdmin.GET("/payments", h.BillingHandler.ListPendingPayments)
			billingAdmin.POST("/payments/:id/approve", h.BillingHandler.ApprovePayment)
			billingAdmin.POST("/payments/:id/reject", h.BillingHandler.RejectPayment)

			billingAdmin.GET("/plans/:id", h.PlanHandler.GetPlan)
			billingAdmin.POST("/plans", h.PlanHandler.CreatePlan)
			billingAdmin.PUT("/plans/:id", h.PlanHandler.UpdatePlan)
			billingAdmin.POST("/plans/:id/deactivate", h.PlanHandler.DeactivatePlan)
			billingAdmin.POST("/plans/:id/activate", h.PlanHandler.ActivatePlan)
		}
	}

	// ==================== Listings ====================
	listings := api.Group("/listings")
	{
		listings.GET("/:id", h.ListingHandler.Get)

		listingsAuth := listings.Group("")
		listingsAuth.Use(h.AuthMiddleware.Auth())
		{
			listingsAuth.POST("", h.ListingHandler.Create)
			listingsAuth.GET("", h.ListingHandler.ListMine)
			listingsAuth.POST("/:id/feature", h.ListingHandler.Feature)
		}
	}
}
