package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/five82/folio/internal/gallery"
	"github.com/five82/folio/internal/media"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) categories(c *gin.Context) {
	names, err := s.backend.Categories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) list(c *gin.Context) {
	folder := strings.TrimSpace(c.Param("folder"))
	images, err := s.backend.List(c.Request.Context(), folder)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch images"})
		return
	}
	if images == nil {
		images = []gallery.Image{}
	}
	c.JSON(http.StatusOK, images)
}

func (s *Server) upload(c *gin.Context) {
	var fields gallery.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	folder := strings.TrimSpace(c.Param("folder"))
	img, err := s.backend.Upload(c.Request.Context(), folder, fields)
	var verr *gallery.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}
	s.log.WithField("id", img.ID).Info("image stored")
	c.JSON(http.StatusOK, img)
}

func (s *Server) remove(c *gin.Context) {
	id := c.Param("id")
	err := s.backend.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, media.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid image id"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
