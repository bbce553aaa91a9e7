package main

import (
	"context"
	"net/http"

	"callboard/internal/httpapi"
	"callboard/internal/rbac"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	authMW    gin.HandlerFunc
	rateLimit gin.HandlerFunc
	healthy   func(ctx context.Context) error
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if deps.healthy != nil {
			if err := deps.healthy(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// protected API group. Reads are open to any authenticated role;
	// mutations additionally require a role allowed to change records,
	// and are rate limited.
	v1 := r.Group("/v1")
	v1.Use(deps.authMW)
	h.Register(v1, rbac.RequireAnyRole(rbac.RoleStaff), deps.rateLimit)
}
