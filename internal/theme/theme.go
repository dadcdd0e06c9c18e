// Package theme holds the static skins offered to clients and the headline each
// one prints for an evaluation result.
package theme

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"StockLens/internal/model"
)

// Default is used when a request names no theme.
const Default = "default"

// Tier grades how well a model scored.
type Tier int

const (
	TierWeak Tier = iota
	TierModerate
	TierStrong
)

func (t Tier) String() string {
	switch t {
	case TierStrong:
		return "strong"
	case TierModerate:
		return "moderate"
	default:
		return "weak"
	}
}

// Theme is a named palette, font set and message voice.
type Theme struct {
	Name    string            `json:"name"`
	Title   string            `json:"title"`
	Palette map[string]string `json:"palette"` // CSS custom property -> colour
	Fonts   map[string]string `json:"fonts"`   // family -> stylesheet URL
	// Headlines are indexed by Tier.
	Headlines [3]string `json:"-"`
	// Verdicts holds one line per mode, indexed by Tier.
	Verdicts map[model.AnalysisMode][3]string `json:"-"`
}

var registry = map[string]*Theme{}

var aliases = map[string]string{
	"game of thrones": "got",
	"thrones":         "got",
	"welcome":         Default,
}

func register(t *Theme) { registry[t.Name] = t }

// Lookup returns a theme by name, case-insensitively. An empty name selects Default.
func Lookup(name string) (*Theme, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, " theme")
	if key == "" {
		key = Default
	}
	if a, ok := aliases[key]; ok {
		key = a
	}
	t, ok := registry[key]
	return t, ok
}

// Names lists registered themes in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TierFor grades metrics: r2 for regression, accuracy for classification and
// silhouette for clustering. Missing or NaN scores grade as weak.
func TierFor(m model.Metrics) Tier {
	var (
		name           string
		strong, middle float64
	)
	switch m.Mode {
	case model.ModeRegression:
		name, strong, middle = model.MetricR2, 0.8, 0.5
	case model.ModeClassification:
		name, strong, middle = model.MetricAccuracy, 0.8, 0.5
	case model.ModeClustering:
		name, strong, middle = model.MetricSilhouette, 0.5, 0.3
	default:
		return TierWeak
	}
	v, ok := m.Get(name)
	switch {
	case !ok || math.IsNaN(v):
		return TierWeak
	case v > strong:
		return TierStrong
	case v > middle:
		return TierModerate
	}
	return TierWeak
}

// Message renders the headline for metrics in the theme's voice.
func (t *Theme) Message(m model.Metrics) string {
	tier := TierFor(m)
	var b strings.Builder
	b.WriteString(t.Headlines[tier])
	if lines, ok := t.Verdicts[m.Mode]; ok {
		b.WriteString(" ")
		b.WriteString(lines[tier])
	}
	if s := scoreLine(m); s != "" {
		b.WriteString(" ")
		b.WriteString(s)
	}
	return b.String()
}

func scoreLine(m model.Metrics) string {
	switch m.Mode {
	case model.ModeRegression:
		r2, _ := m.Get(model.MetricR2)
		mse, _ := m.Get(model.MetricMSE)
		return fmt.Sprintf("(R² %.2f, MSE %.2f)", r2, mse)
	case model.ModeClassification:
		acc, _ := m.Get(model.MetricAccuracy)
		return fmt.Sprintf("(accuracy %.2f)", acc)
	case model.ModeClustering:
		s, _ := m.Get(model.MetricSilhouette)
		return fmt.Sprintf("(silhouette %.2f)", s)
	}
	return ""
}
