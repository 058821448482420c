package dashboard

import (
	"math"
	"strings"
)

const (
	riskBase           = 45.0
	riskPerThousand    = 1.0
	riskPerDiscrepancy = 6.0
	riskPerHigh        = 12.0
	riskCeiling        = 100

	highRiskThreshold   = 75
	mediumRiskThreshold = 55
)

var riskSummaries = map[string]string{
	RiskHigh:   "Immediate review recommended. Multiple leakage risks detected.",
	RiskMedium: "Monitor closely and schedule a follow-up audit.",
	RiskLow:    "Healthy contract. Continue periodic audits.",
}

// IsHighSeverity reports whether a discrepancy is high priority or its issue
// mentions something critical.
func IsHighSeverity(d Discrepancy) bool {
	return strings.EqualFold(strings.TrimSpace(d.Priority), "high") ||
		strings.Contains(strings.ToLower(d.Issue), "critical")
}

// ComputeRisk scores a vendor from its discrepancies and recoverable amount.
// It returns nil when no analysis has loaded, which is distinct from a
// loaded analysis with zero risk.
func ComputeRisk(loaded bool, ds []Discrepancy, recoverable float64) *VendorRisk {
	if !loaded {
		return nil
	}
	high := 0
	for _, d := range ds {
		if IsHighSeverity(d) {
			high++
		}
	}
	raw := riskBase +
		recoverable/1000*riskPerThousand +
		float64(len(ds))*riskPerDiscrepancy +
		float64(high)*riskPerHigh
	score := int(math.Max(0, math.Min(riskCeiling, math.Round(raw))))

	level := RiskLow
	switch {
	case score >= highRiskThreshold:
		level = RiskHigh
	case score >= mediumRiskThreshold:
		level = RiskMedium
	}

	return &VendorRisk{
		Score:            score,
		Level:            level,
		Summary:          riskSummaries[level],
		DiscrepancyCount: len(ds),
		Leakage:          recoverable,
		HighSeverity:     high,
	}
}
