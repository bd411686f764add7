package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/notify"
	"github.com/zulandar/waybill/internal/store"
	"github.com/zulandar/waybill/internal/train"
)

func registerTrainRoutes(api *gin.RouterGroup, st store.Store, hub *notify.Hub) {
	group := api.Group("/trains")

	group.GET("", func(c *gin.Context) {
		trains, err := train.List(c.Request.Context(), st)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, trains)
	})

	group.GET("/:id", func(c *gin.Context) {
		enriched, err := train.GetEnriched(c.Request.Context(), st, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, enriched)
	})

	group.POST("", func(c *gin.Context) {
		var t models.Train
		if err := c.ShouldBindJSON(&t); err != nil {
			badRequest(c, err)
			return
		}
		created, err := train.Create(c.Request.Context(), st, t)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	group.PUT("/:id", func(c *gin.Context) {
		var patch store.Record
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		updated, err := train.Update(c.Request.Context(), st, c.Param("id"), patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	group.DELETE("/:id", func(c *gin.Context) {
		if err := train.Delete(c.Request.Context(), st, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	group.POST("/:id/switch-list", func(c *gin.Context) {
		planned, err := train.GenerateSwitchList(c.Request.Context(), st, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, planned)
	})

	group.POST("/:id/complete", func(c *gin.Context) {
		completed, err := train.Complete(c.Request.Context(), st, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		hub.TrainCompleted(c.Request.Context(), completed)
		c.JSON(http.StatusOK, completed)
	})

	group.POST("/:id/cancel", func(c *gin.Context) {
		cancelled, err := train.Cancel(c.Request.Context(), st, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cancelled)
	})
}
