package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ToolChecker reports whether the external conversion tool can be invoked.
type ToolChecker interface {
	Available() bool
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	tool    ToolChecker
	version string
}

// NewHealthHandler constructs the handler.  tool may be nil when the server
// runs without the external tool (2D-only deployments).
func NewHealthHandler(tool ToolChecker, version string) *HealthHandler {
	return &HealthHandler{tool: tool, version: version}
}

// Liveness handles GET /healthz: the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Readiness handles GET /readyz: the server can do useful work.  Readiness
// degrades when the conversion tool is configured but unavailable, since
// SMILES conversion would fail every request.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.tool != nil && !h.tool.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"reason": "conversion tool not available",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
