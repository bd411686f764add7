package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/notify"
	"github.com/zulandar/waybill/internal/session"
	"github.com/zulandar/waybill/internal/store"
)

// sessionResponse pairs the session singleton with operation stats.
type sessionResponse struct {
	Session *models.OperatingSession `json:"session"`
	Stats   interface{}              `json:"stats,omitempty"`
}

// descriptionRequest carries an operator-supplied session description.
type descriptionRequest struct {
	Description string `json:"description"`
}

func registerSessionRoutes(api *gin.RouterGroup, st store.Store, hub *notify.Hub) {
	api.GET("/session", func(c *gin.Context) {
		sess, err := session.Current(c.Request.Context(), st)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse{Session: sess})
	})

	api.POST("/session/advance", func(c *gin.Context) {
		var req descriptionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}
		sess, stats, err := session.Advance(c.Request.Context(), st, req.Description)
		if err != nil {
			writeError(c, err)
			return
		}
		hub.SessionAdvanced(c.Request.Context(), stats.AdvancedToSession, stats.TrainsDeleted)
		c.JSON(http.StatusOK, sessionResponse{Session: sess, Stats: stats})
	})

	api.POST("/session/rollback", func(c *gin.Context) {
		var req descriptionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}
		sess, stats, err := session.Rollback(c.Request.Context(), st, req.Description)
		if err != nil {
			writeError(c, err)
			return
		}
		hub.SessionRolledBack(c.Request.Context(), stats.RolledBackToSession)
		c.JSON(http.StatusOK, sessionResponse{Session: sess, Stats: stats})
	})

	api.PUT("/session/description", func(c *gin.Context) {
		var req descriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sess, err := session.UpdateDescription(c.Request.Context(), st, req.Description)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse{Session: sess})
	})
}
