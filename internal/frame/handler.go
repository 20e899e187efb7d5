package frame

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler answers the host feed's button interactions. A body that does not
// parse as JSON is answered with a 500 error payload, matching the surface
// contract.
func Handler(cfg *Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in Interaction
		if err := c.ShouldBindJSON(&in); err != nil {
			zap.L().Error("Malformed frame interaction", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, Respond(cfg, in))
	}
}

// ImageHandler serves the share graphic. The image takes no input, so it is
// rendered once and reused.
func ImageHandler(cfg *Config) gin.HandlerFunc {
	var once sync.Once
	var png []byte
	var renderErr error

	return func(c *gin.Context) {
		once.Do(func() {
			png, renderErr = RenderShareImage(cfg)
		})
		if renderErr != nil {
			zap.L().Error("Share image render failed", zap.Error(renderErr))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, "image/png", png)
	}
}
