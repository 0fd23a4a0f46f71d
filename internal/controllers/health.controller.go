package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReadinessCheck reports whether one dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

type HealthController struct {
	version string
	checks  map[string]ReadinessCheck
	timeout time.Duration
	logger  *logrus.Logger
}

// NewHealthController creates the controller. checks are keyed by the
// dependency name reported in /readyz.
func NewHealthController(version string, checks map[string]ReadinessCheck, logger *logrus.Logger) *HealthController {
	return &HealthController{
		version: version,
		checks:  checks,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// Banner godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service information"
// @Router / [get]
func (hc *HealthController) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "EPIF API is running",
		"version": hc.version,
		"status":  "healthy",
		"checks":  hc.names(),
	})
}

// Healthz godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Alive"
// @Router /healthz [get]
func (hc *HealthController) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz godoc
// @Summary Readiness probe
// @Description Checks the classifier and, when enabled, the database and prediction cache
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "A dependency is unavailable"
// @Router /readyz [get]
func (hc *HealthController) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), hc.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(hc.checks))
	for _, name := range hc.names() {
		if err := hc.checks[name](ctx); err != nil {
			hc.logger.WithError(err).WithField("dependency", name).Warn("Readiness check failed")
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": results,
	})
}

func (hc *HealthController) names() []string {
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
