package controllers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbonlens/web/utils"
)

const exportLimit = 10000

// ListSignups returns paginated completion attempts, newest first.
func ListSignups(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Signups == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signup log disabled"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		if offset < 0 {
			offset = 0
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		items, err := d.Signups.ListAttempts(ctx, limit, offset)
		if err != nil {
			d.Log.Error("list signups", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

// ExportSignups streams the attempt log as an XLSX workbook.
func ExportSignups(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Signups == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signup log disabled"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		items, err := d.Signups.ListAttempts(ctx, exportLimit, 0)
		if err != nil {
			d.Log.Error("export signups", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		var buf bytes.Buffer
		if err := utils.WriteSignupsXLSX(&buf, items); err != nil {
			d.Log.Error("render signups xlsx", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		name := "signups-" + time.Now().UTC().Format("20060102") + ".xlsx"
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}
