package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type gatherRequest struct {
	// Account is an id, email or name. Empty means every account.
	Account string `json:"account"`
	Begin   string `json:"begin"`
	End     string `json:"end"`
}

// Gather triggers an ingestion run from the API. The fetch window is
// optional; zero values fall back to the fetcher's default window.
func (s *Server) Gather(c *gin.Context) {
	var req gatherRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	begin, end, err := parseWindow(req.Begin, req.End)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if ref := strings.TrimSpace(req.Account); ref != "" {
		result, err := s.collectorSvc.GatherAccount(c.Request.Context(), ref, begin, end)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
		return
	}

	results, err := s.collectorSvc.GatherAll(c.Request.Context(), begin, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

func parseWindow(beginRaw, endRaw string) (begin, end time.Time, err error) {
	if raw := strings.TrimSpace(beginRaw); raw != "" {
		if begin, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if raw := strings.TrimSpace(endRaw); raw != "" {
		if end, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return begin, end, nil
}
