package transport

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "go-vision-proxy/internal/errors"

	"github.com/gin-gonic/gin"
)

const entryDocument = "index.html"

// registerAppShell serves /static/* from staticDir and answers every other
// non-API GET with the client-side router's entry document.
func registerAppShell(r *gin.Engine, templateDir, staticDir string) {
	index := filepath.Join(templateDir, entryDocument)

	r.Static("/static", staticDir)
	r.GET("/", serveEntry(index))
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if !isRead || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") {
			respondError(c, apperrors.NewNotFoundError("not found", nil))
			return
		}
		serveEntry(index)(c)
	})
}

func serveEntry(index string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if info, err := os.Stat(index); err != nil || info.IsDir() {
			respondError(c, apperrors.NewNotFoundError("not found", err))
			return
		}
		c.File(index)
	}
}
