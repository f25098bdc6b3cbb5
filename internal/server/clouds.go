package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
)

func (s *Server) CreateCloud(c *gin.Context) {
	var req clouddomain.CreateCloudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cloud, err := s.cloudSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": cloud})
}

func (s *Server) ListClouds(c *gin.Context) {
	clouds, err := s.cloudSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": clouds})
}

func (s *Server) GetCloud(c *gin.Context) {
	cloud, err := s.cloudSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cloud})
}

func (s *Server) DeleteCloud(c *gin.Context) {
	if err := s.cloudSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// TestCloudAuth forces an identity round-trip so operators can verify
// credentials without waiting for the next gather run.
func (s *Server) TestCloudAuth(c *gin.Context) {
	if err := s.cloudSvc.TestAuth(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "authenticated"})
}
