package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voiceshift/version"
)

var startTime = time.Now()

// InfoProvider contributes service-specific fields to /info.
type InfoProvider func() map[string]any

// Info reports build information, uptime and whatever info adds.
func Info(serviceName string, info InfoProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.GetVersionInfo()
		body := gin.H{
			"service":    serviceName,
			"version":    v.Version,
			"git_commit": v.GitCommit,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"uptime":     time.Since(startTime).String(),
		}
		if info != nil {
			for k, val := range info() {
				body[k] = val
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
