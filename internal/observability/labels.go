package observability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/bolao-sca/internal/config"
)

// deploymentLabels describes how this replica evaluates and scores bets, so
// profiles and traces from differently configured pools can be told apart.
func deploymentLabels(cfg config.Config) map[string]string {
	labels := map[string]string{
		"env":            cfg.AppEnv,
		"service":        cfg.ServiceName,
		"store":          cfg.StoreDriver,
		"points_per_hit": strconv.Itoa(cfg.ScoringPointsPerHit),
		"betting_close": fmt.Sprintf("%s %02d:%02d",
			strings.ToLower(cfg.BettingCloseWeekday.String()), cfg.BettingCloseHour, cfg.BettingCloseMinute),
		"betting_reopen": strings.ToLower(cfg.BettingReopenWeekday.String()),
	}
	if cfg.BettingLocation != nil {
		labels["betting_tz"] = cfg.BettingLocation.String()
	}
	if cfg.CacheEnabled {
		labels["cache"] = cfg.CacheBackend
	} else {
		labels["cache"] = "off"
	}
	return labels
}

// resourceAttributes exports the pool-specific labels under the bolao namespace.
// env and service are already set by the exporter.
func resourceAttributes(cfg config.Config) []attribute.KeyValue {
	labels := deploymentLabels(cfg)
	keys := make([]string, 0, len(labels))
	for k := range labels {
		if k == "env" || k == "service" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attribute.String("bolao."+k, labels[k]))
	}
	return attrs
}
