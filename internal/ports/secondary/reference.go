package secondary

import "context"

// ReferenceDataProvider defines the secondary port for the read-only
// knowledge base. Bundles are loaded once before a run starts, treated as
// immutable for the process lifetime, and safe for concurrent stage reads.
// The core never writes to them.
type ReferenceDataProvider interface {
	// IndustryKPIs returns the per-industry KPI sets keyed by industry name.
	IndustryKPIs(ctx context.Context) (map[string]any, error)

	// IndustryKPIsFor returns the KPI set for one detected industry, or an
	// empty map when the industry is unknown.
	IndustryKPIsFor(ctx context.Context, industry string) (map[string]any, error)

	// BaselineMetrics returns the baseline ROI metric bundle.
	BaselineMetrics(ctx context.Context) (map[string]any, error)
}
