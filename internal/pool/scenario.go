package pool

import (
	"strings"

	"github.com/kikiluvv/quizprep/internal/config"
)

// Scenarios maps a domain to the scenario sentences shown above each question.
type Scenarios struct {
	table       map[string]config.Scenario
	defaultTips string
	defaultGE   string
}

// NewScenarios builds the lookup from pool configuration.
func NewScenarios(cfg config.PoolConfig) Scenarios {
	table := make(map[string]config.Scenario, len(cfg.Scenarios))
	for domain, s := range cfg.Scenarios {
		table[strings.ToLower(domain)] = s
	}
	return Scenarios{table: table, defaultTips: cfg.DefaultTips, defaultGE: cfg.DefaultGE}
}

// Text returns the scenario sentence for domain, falling back to the defaults
// when the domain or the requested variant is unknown.
func (s Scenarios) Text(domain string, isGE bool) string {
	entry, ok := s.table[strings.ToLower(domain)]
	if isGE {
		if ok && entry.GE != "" {
			return entry.GE
		}
		return s.defaultGE
	}
	if ok && entry.Tips != "" {
		return entry.Tips
	}
	return s.defaultTips
}

// ParseFileName extracts the domain and the ge/tips kind from an enriched
// result file name such as "violin_ge_batch1_enriched.json".
func ParseFileName(name string) (domain string, isGE bool) {
	domain, _, _ = strings.Cut(name, "_")
	return domain, strings.Contains(name, "_ge_")
}
