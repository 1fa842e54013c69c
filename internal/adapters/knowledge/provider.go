// Package knowledge loads the read-only reference bundles the pipeline feeds
// into stage contexts: per-industry KPI sets and baseline ROI metrics. Files
// are YAML, loaded once per process and immutable afterwards.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dealnexus/discovery/internal/ports/secondary"
)

const (
	kpiFile      = "industry_kpis.yaml"
	baselineFile = "baseline_metrics.yaml"
)

// Provider implements the ReferenceDataProvider port over a directory of
// YAML bundles.
type Provider struct {
	dir string

	once     sync.Once
	loadErr  error
	kpis     map[string]any
	baseline map[string]any
}

// NewProvider creates a provider rooted at dir. Nothing is read until the
// first lookup.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// IndustryKPIs returns the per-industry KPI sets keyed by industry name.
func (p *Provider) IndustryKPIs(ctx context.Context) (map[string]any, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	return p.kpis, nil
}

// IndustryKPIsFor returns the KPI set for one industry. Lookup is
// case-insensitive; unknown industries get an empty map, not an error, so a
// misdetected industry degrades the context instead of failing the run.
func (p *Provider) IndustryKPIsFor(ctx context.Context, industry string) (map[string]any, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	if set, ok := p.kpis[strings.ToLower(industry)].(map[string]any); ok {
		return set, nil
	}
	return map[string]any{}, nil
}

// BaselineMetrics returns the baseline ROI metric bundle.
func (p *Provider) BaselineMetrics(ctx context.Context) (map[string]any, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	return p.baseline, nil
}

func (p *Provider) load() error {
	p.once.Do(func() {
		kpis, err := readBundle(filepath.Join(p.dir, kpiFile))
		if err != nil {
			p.loadErr = err
			return
		}
		baseline, err := readBundle(filepath.Join(p.dir, baselineFile))
		if err != nil {
			p.loadErr = err
			return
		}
		p.kpis = lowerKeys(kpis)
		p.baseline = baseline
	})
	return p.loadErr
}

func readBundle(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge bundle: %w", err)
	}
	var bundle map[string]any
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return bundle, nil
}

func lowerKeys(bundle map[string]any) map[string]any {
	lowered := make(map[string]any, len(bundle))
	for k, v := range bundle {
		lowered[strings.ToLower(k)] = v
	}
	return lowered
}

// Ensure Provider implements the port.
var _ secondary.ReferenceDataProvider = (*Provider)(nil)
