package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/code-payments/vault-driver/pkg/metrics"
	"github.com/code-payments/vault-driver/pkg/vault/common"
)

const (
	runEventName = "VaultDriverRun"

	phaseDurationMetricName = "VaultDriver/%s_duration"
	phaseFailureMetricName  = "VaultDriver/%s_failure_count"
)

func recordRunEvent(ctx context.Context, result *Result, duration time.Duration, err error) {
	kvPairs := map[string]interface{}{
		"run_id":      result.RunId,
		"phases":      len(result.Signatures),
		"success":     err == nil,
		"duration_ms": duration.Milliseconds(),
	}
	if result.Program != nil {
		kvPairs["program"] = result.Program.String()
	}
	if err != nil {
		kvPairs["error"] = err.Error()
	}

	metrics.RecordEvent(ctx, runEventName, kvPairs)
}

func recordPhaseDuration(ctx context.Context, phase common.Phase, duration time.Duration) {
	metrics.RecordDuration(ctx, fmt.Sprintf(phaseDurationMetricName, phase), duration)
}

func recordPhaseFailure(ctx context.Context, phase common.Phase) {
	metrics.RecordCount(ctx, fmt.Sprintf(phaseFailureMetricName, phase), 1)
}
