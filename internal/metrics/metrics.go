package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"saleor-stripe-app/internal/config"

	"github.com/VictoriaMetrics/metrics"
)

// Setup starts pushing metrics when a push URL is configured.
func Setup(cfg config.Metrics, logger *slog.Logger) {
	if cfg.URL == "" {
		return
	}

	err := metrics.InitPush(cfg.URL, time.Duration(cfg.IntervalMs)*time.Millisecond, cfg.CommonLabels, true)
	if err != nil {
		logger.Error("Error initializing metrics push", "error", err)
	}
}

func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		Write(w)
	}
}

func Write(w io.Writer) {
	metrics.WritePrometheus(w, true)
}
