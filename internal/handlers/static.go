package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tesseract-hub/cloud-translate-service/internal/models"
)

// StaticHandler serves the built UI for every route the API does not own
type StaticHandler struct {
	root    string
	enabled bool
}

// NewStaticHandler serves files from dir. A missing directory disables it.
func NewStaticHandler(dir string, logger *logrus.Entry) *StaticHandler {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.WithField("dir", dir).Info("Static directory not found, static assets disabled")
		return &StaticHandler{root: dir}
	}
	logger.WithField("dir", dir).Info("Serving static assets")
	return &StaticHandler{root: dir, enabled: true}
}

// Serve resolves the request path inside the root, falling back to
// index.html for directories.
func (h *StaticHandler) Serve(c *gin.Context) {
	if !h.enabled || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		notFound(c)
		return
	}

	clean := path.Clean("/" + c.Request.URL.Path)
	full := filepath.Join(h.root, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
	}
	if err != nil || info.IsDir() {
		notFound(c)
		return
	}

	c.File(full)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "NOT_FOUND",
		Message: "Resource not found",
	})
}
