package backtest

import (
	"fmt"
	"strings"
)

// GenerateConsoleReport formats metrics for terminal output
func GenerateConsoleReport(metrics Metrics) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Hands: %d (bets %d, pushes %d, skipped %d)\n", metrics.Hands, metrics.Bets, metrics.Pushes, metrics.Skipped))
	builder.WriteString(fmt.Sprintf("Accuracy: %s%% (%d won, %d lost)\n", metrics.Accuracy.StringFixed(1), metrics.Wins, metrics.Losses))
	builder.WriteString(fmt.Sprintf("Net Units: %s\n", metrics.NetUnits.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Drawdown: %s max, %s now\n", metrics.MaxDrawdown.StringFixed(2), metrics.DrawdownNow.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Longest Runs: %d won, %d lost\n", metrics.LongestWinRun, metrics.LongestLossRun))
	if len(metrics.ByRule) == 0 {
		return builder.String()
	}
	builder.WriteString("\nBy Rule\n")
	for _, rm := range metrics.ByRule {
		builder.WriteString(fmt.Sprintf("  %-26s %4d bets  %5s%%  %7s units\n",
			rm.Rule, rm.Bets, rm.Accuracy.StringFixed(1), rm.NetUnits.StringFixed(2)))
	}
	return builder.String()
}
