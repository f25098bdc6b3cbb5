package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/ratewatchlabs/ratewatch/pkg/db/pagination"
)

func (s *Server) DailyCosts(c *gin.Context) {
	cloudID, err := snowflake.ParseString(strings.TrimSpace(c.Query("cloud_id")))
	if err != nil || cloudID == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// Resolve first so an unknown cloud is a 404, not an empty report.
	if _, err := s.cloudSvc.Get(c.Request.Context(), cloudID.String()); err != nil {
		AbortWithError(c, err)
		return
	}

	costs, err := s.ratingSvc.CostByDay(c.Request.Context(), cloudID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": costs})
}

func (s *Server) ListRatings(c *gin.Context) {
	resourceID, err := snowflake.ParseString(strings.TrimSpace(c.Query("resource_id")))
	if err != nil || resourceID == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ratings, info, err := s.ratingSvc.ListByResource(c.Request.Context(), resourceID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ratings, "page_info": info})
}
