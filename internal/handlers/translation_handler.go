package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tesseract-hub/cloud-translate-service/internal/cache"
	"github.com/tesseract-hub/cloud-translate-service/internal/clients"
	"github.com/tesseract-hub/cloud-translate-service/internal/metrics"
	"github.com/tesseract-hub/cloud-translate-service/internal/middleware"
	"github.com/tesseract-hub/cloud-translate-service/internal/models"
	"github.com/tesseract-hub/cloud-translate-service/internal/repository"
)

// TranslationHandler handles translation API requests
type TranslationHandler struct {
	provider clients.TranslationProvider
	cache    cache.Cache
	stats    repository.StatsRepository
	logger   *logrus.Entry
}

// NewTranslationHandler creates a new translation handler
func NewTranslationHandler(
	provider clients.TranslationProvider,
	translationCache cache.Cache,
	stats repository.StatsRepository,
	logger *logrus.Entry,
) *TranslationHandler {
	if translationCache == nil {
		translationCache = cache.NoopCache{}
	}
	if stats == nil {
		stats = repository.NoopStatsRepository{}
	}
	return &TranslationHandler{
		provider: provider,
		cache:    translationCache,
		stats:    stats,
		logger:   logger,
	}
}

// GetLanguages returns the languages usable as both source and target
// GET /languages
func (h *TranslationHandler) GetLanguages(c *gin.Context) {
	log := h.requestLogger(c)

	start := time.Now()
	languages, err := h.provider.FetchLanguages(c.Request.Context())
	metrics.ProviderCall("fetch_languages", start, err)
	if err != nil {
		log.WithError(err).Error("Failed to fetch languages")
		h.providerError(c, err, "LANGUAGES_FAILED", "Failed to retrieve languages")
		return
	}

	h.writeJSON(c, log, languages)
}

// Translate handles single translation requests
// POST /translate
func (h *TranslationHandler) Translate(c *gin.Context) {
	var body models.TranslateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	req := body.Request()
	log := h.requestLogger(c).WithFields(logrus.Fields{
		"source_lang": req.SourceLanguageCode,
		"target_lang": req.TargetLanguageCode,
	})

	translated, cached, err := h.translate(c.Request.Context(), log, req)
	if err != nil {
		log.WithError(err).Error("Translation failed")
		h.providerError(c, err, "TRANSLATION_FAILED", "Failed to translate text")
		return
	}

	h.recordStats(log, req, cached)
	h.writeJSON(c, log, translated)
}

// translate runs the cache-aside pipeline. Cache failures never surface;
// a provider failure is returned once without retry.
func (h *TranslationHandler) translate(ctx context.Context, log *logrus.Entry, req models.TranslationRequest) (string, bool, error) {
	fp := models.NewFingerprint(req)

	if text, ok := h.cache.Get(ctx, fp); ok {
		metrics.CacheLookup(true)
		log.WithField("key", fp.Key()).Debug("Cache hit")
		return text, true, nil
	}
	metrics.CacheLookup(false)

	start := time.Now()
	text, err := h.provider.Translate(ctx, req)
	metrics.ProviderCall("translate", start, err)
	if err != nil {
		return "", false, err
	}

	h.cache.Set(ctx, fp, text)
	return text, false, nil
}

func (h *TranslationHandler) recordStats(log *logrus.Entry, req models.TranslationRequest, cached bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.stats.RecordTranslation(ctx, req.SourceLanguageCode, req.TargetLanguageCode, cached, int64(len(req.Text))); err != nil {
			log.WithError(err).Warn("Failed to record translation stats")
		}
	}()
}

// GetStats returns usage counters per language pair
// GET /stats
func (h *TranslationHandler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.stats.ListStats(ctx)
	if err != nil {
		h.requestLogger(c).WithError(err).Error("Failed to get stats")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "STATS_FAILED",
			Message: "Failed to retrieve statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pairs": stats,
		"count": len(stats),
	})
}

// Health returns service health status
// GET /health
func (h *TranslationHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	checks := make(map[string]string)

	if h.providerAvailable() {
		checks["provider"] = "available"
	} else {
		checks["provider"] = "unavailable"
		status = "unhealthy"
	}

	if _, disabled := h.cache.(cache.NoopCache); disabled {
		checks["cache"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		checks["cache"] = "unhealthy: " + err.Error()
		if status == "healthy" {
			status = "degraded"
		}
	} else {
		checks["cache"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status": status,
		"checks": checks,
	})
}

// Livez returns liveness status
// GET /livez
func (h *TranslationHandler) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readyz reports readiness. The service stays ready without a provider
// because static routes are still served.
// GET /readyz
func (h *TranslationHandler) Readyz(c *gin.Context) {
	provider := "available"
	if !h.providerAvailable() {
		provider = "unavailable"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "provider": provider})
}

func (h *TranslationHandler) providerAvailable() bool {
	_, unavailable := h.provider.(clients.UnavailableProvider)
	return !unavailable
}

// providerError maps a provider failure to a transport response
func (h *TranslationHandler) providerError(c *gin.Context, err error, fallbackCode, message string) {
	switch clients.KindOf(err) {
	case clients.KindUnavailable:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "PROVIDER_UNAVAILABLE",
			Message: "Translation provider is not configured",
		})
	case clients.KindTimeout:
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Error:   "PROVIDER_TIMEOUT",
			Message: "Translation provider timed out",
		})
	case clients.KindConnect:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "PROVIDER_CONNECT_FAILED",
			Message: "Could not connect to translation provider",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   fallbackCode,
			Message: message,
		})
	}
}

// writeJSON serializes before writing so an encoding failure still yields a 500
func (h *TranslationHandler) writeJSON(c *gin.Context, log *logrus.Entry, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Failed to serialize response")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "SERIALIZATION_FAILED",
			Message: "Failed to encode response",
		})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *TranslationHandler) requestLogger(c *gin.Context) *logrus.Entry {
	return h.logger.WithField("request_id", middleware.GetRequestID(c))
}
