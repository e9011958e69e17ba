// Package report renders statistics bundles into self-contained
// interactive HTML artifacts. Rendering is stateless: each report kind is
// a pure function of the bundle, and regenerating one artifact never
// requires regenerating another.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ask_analytics/internal/metrics"
	"ask_analytics/stats"
)

// Kind names one entry of the fixed chart catalog.
type Kind string

const (
	KindTimeDistribution    Kind = "time_distribution"
	KindOperatorPerformance Kind = "operator_performance"
	KindSeasonalTrend       Kind = "seasonal_trend"
	KindChordDiagram        Kind = "chord_diagram"
	KindDashboard           Kind = "dashboard"

	// KindTrendComparison is rendered from a two-period comparison
	// rather than a single bundle, so it sits outside the per-period
	// catalog that WriteAll walks.
	KindTrendComparison Kind = "trend_comparison"
)

// Kinds lists the catalog in rendering order.
var Kinds = []Kind{
	KindTimeDistribution,
	KindOperatorPerformance,
	KindSeasonalTrend,
	KindChordDiagram,
	KindDashboard,
}

// ServiceScope is the scope name used for service-wide artifacts.
const ServiceScope = "service"

// ScopeName derives the artifact scope from a school display name:
// spaces become underscores; an empty name means service-wide.
func ScopeName(school string) string {
	school = strings.TrimSpace(school)
	if school == "" {
		return ServiceScope
	}
	return strings.ReplaceAll(school, " ", "_")
}

// FileName is the deterministic artifact name for a scope and kind.
func FileName(scope string, kind Kind) string {
	return fmt.Sprintf("%s_%s.html", scope, kind)
}

// Renderer writes artifacts for one scope into an output directory.
type Renderer struct {
	OutputDir string
}

// Render produces the named report kind from computed aggregates only.
func (r Renderer) Render(b stats.Bundle, flows []stats.Flow, kind Kind) ([]byte, error) {
	switch kind {
	case KindTimeDistribution:
		return renderTimeDistribution(b)
	case KindOperatorPerformance:
		return renderOperatorPerformance(b)
	case KindSeasonalTrend:
		return renderSeasonalTrend(b)
	case KindChordDiagram:
		return renderChordDiagram(b, flows)
	case KindDashboard:
		return renderDashboard(b, flows)
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
}

// Write renders one artifact and writes it under the output directory,
// overwriting any previous run's file. It returns the written path.
func (r Renderer) Write(b stats.Bundle, flows []stats.Flow, kind Kind) (string, error) {
	data, err := r.Render(b, flows, kind)
	if err != nil {
		return "", err
	}
	return r.writeArtifact(ScopeName(b.Scope), kind, data)
}

// WriteComparison renders the month-by-month trend comparison artifact
// for the comparison's scope and returns the written path.
func (r Renderer) WriteComparison(c stats.Comparison) (string, error) {
	data, err := renderTrendComparison(c)
	if err != nil {
		return "", err
	}
	return r.writeArtifact(ScopeName(c.Scope), KindTrendComparison, data)
}

func (r Renderer) writeArtifact(scope string, kind Kind, data []byte) (string, error) {
	dir := r.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(scope, kind))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	metrics.ReportsWritten.WithLabelValues(string(kind)).Inc()
	return path, nil
}

// WriteAll writes every kind in the catalog and returns the paths.
func (r Renderer) WriteAll(b stats.Bundle, flows []stats.Flow) ([]string, error) {
	paths := make([]string, 0, len(Kinds))
	for _, kind := range Kinds {
		path, err := r.Write(b, flows, kind)
		if err != nil {
			return paths, fmt.Errorf("render %s: %w", kind, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
