package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/waybill/internal/carorder"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/store"
)

// generateRequest selects what a manual generation run covers.
type generateRequest struct {
	SessionNumber int      `json:"sessionNumber"`
	IndustryIDs   []string `json:"industryIds"`
	Force         bool     `json:"force"`
}

func registerOrderRoutes(api *gin.RouterGroup, st store.Store) {
	group := api.Group("/car-orders")

	group.GET("", func(c *gin.Context) {
		f := carorder.Filters{
			IndustryID: c.Query("industryId"),
			Status:     c.Query("status"),
			AarTypeID:  c.Query("aarTypeId"),
			Search:     c.Query("search"),
		}
		if raw := c.Query("sessionNumber"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				badRequest(c, err)
				return
			}
			f.SessionNumber = n
		}
		orders, err := carorder.List(c.Request.Context(), st, f)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	})

	group.GET("/:id", func(c *gin.Context) {
		enriched, err := carorder.GetEnriched(c.Request.Context(), st, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, enriched)
	})

	group.POST("", func(c *gin.Context) {
		var order models.CarOrder
		if err := c.ShouldBindJSON(&order); err != nil {
			badRequest(c, err)
			return
		}
		created, err := carorder.Create(c.Request.Context(), st, order)
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
		updated, err := carorder.Update(c.Request.Context(), st, c.Param("id"), patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	group.DELETE("/:id", func(c *gin.Context) {
		if err := carorder.Delete(c.Request.Context(), st, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	group.POST("/generate", func(c *gin.Context) {
		var req generateRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}
		res, err := carorder.Generate(c.Request.Context(), st, carorder.GenerateOpts{
			SessionNumber: req.SessionNumber,
			IndustryIDs:   req.IndustryIDs,
			Force:         req.Force,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}
