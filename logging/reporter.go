package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zatchheems/yactatt/transit"
)

// OutcomeReporter logs poll outcomes in place of drawing them.
type OutcomeReporter struct {
	logger *slog.Logger
}

// NewOutcomeReporter writes through logger, or the default logger if nil.
func NewOutcomeReporter(logger *slog.Logger) *OutcomeReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutcomeReporter{logger: logger}
}

// Report writes exactly one record per outcome.
func (r *OutcomeReporter) Report(outcome transit.Outcome) {
	switch o := outcome.(type) {
	case transit.Arrivals:
		rows := make([]string, len(o))
		for i, a := range o {
			rows[i] = fmt.Sprintf("%s %s %s", a.Route, a.ETA, a.Destination)
		}
		r.logger.Info("Arrivals", "count", len(o), "arrivals", strings.Join(rows, " | "))
	case transit.ServiceErrors:
		msgs := make([]string, len(o))
		for i, e := range o {
			msgs[i] = fmt.Sprintf("route=%s stop=%s: %s", e.Route, e.Stop, e.Message)
		}
		r.logger.Warn("Service errors", "count", len(o), "errors", strings.Join(msgs, " | "))
	case transit.TransportFailure:
		r.logger.Error("Transport failure", "kind", o.Kind.String(), "status", o.StatusCode, "error", o.Err)
	default:
		r.logger.Error("Unknown outcome", "type", fmt.Sprintf("%T", outcome))
	}
}
