package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbonlens/web/backend"
)

// ListTiers proxies the subscription tiers for the pricing page.
func ListTiers(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		tiers, err := d.Tiers.ListTiers(ctx)
		if err != nil {
			d.Log.Warn("list tiers", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "tiers unavailable", "kind": backend.KindOf(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": tiers})
	}
}
