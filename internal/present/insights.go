package present

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

const (
	maxChartBars   = 5
	minBarWidth    = 10
	maxLabelLength = 25
)

// InsightsView is the community insights panel.
type InsightsView struct {
	Title             string           `json:"title" yaml:"title"`
	Note              string           `json:"note" yaml:"note"`
	RegionTitle       string           `json:"region_title" yaml:"region_title"`
	RegionDiseases    []ChartBar       `json:"region_diseases" yaml:"region_diseases"`
	SeasonalTitle     string           `json:"seasonal_title" yaml:"seasonal_title"`
	SeasonalTrends    []ChartBar       `json:"seasonal_trends" yaml:"seasonal_trends"`
	RecentTitle       string           `json:"recent_title" yaml:"recent_title"`
	RecentSubmissions []SubmissionView `json:"recent_submissions" yaml:"recent_submissions"`
	EmptyMessage      string           `json:"empty_message" yaml:"empty_message"`
}

// ChartBar is one horizontal bar. Width is the percentage clamped to a
// visible minimum.
type ChartBar struct {
	Label      string `json:"label" yaml:"label"`
	Tooltip    string `json:"tooltip" yaml:"tooltip"`
	Percentage int    `json:"percentage" yaml:"percentage"`
	Width      int    `json:"width" yaml:"width"`
}

// SubmissionView is one recent community contribution.
type SubmissionView struct {
	Disease   string `json:"disease" yaml:"disease"`
	Thumbnail string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	Submitted string `json:"submitted" yaml:"submitted"`
}

// RenderInsights maps insight data into view-state for lang. Inputs are not
// reordered in place.
func RenderInsights(ins *models.Insights, lang string) *InsightsView {
	if ins == nil {
		return nil
	}
	view := &InsightsView{
		Title:         i18n.T(lang, i18n.KeyInsightsTitle),
		Note:          i18n.T(lang, i18n.KeyInsightsNote),
		RegionTitle:   i18n.T(lang, i18n.KeyCommonDiseasesTitle),
		SeasonalTitle: i18n.T(lang, i18n.KeySeasonalTrendsTitle),
		RecentTitle:   i18n.T(lang, i18n.KeyRecentSubmissions),
		EmptyMessage:  i18n.T(lang, i18n.KeyNoInsightsAvailable),
	}

	region := make([]barInput, 0, len(ins.RegionDiseases))
	for _, d := range ins.RegionDiseases {
		name := i18n.TranslatedName(lang, d.Name)
		region = append(region, barInput{label: name, tooltip: name, count: d.Count})
	}
	view.RegionDiseases = chart(region)

	seasonal := make([]barInput, 0, len(ins.SeasonalTrends))
	for _, s := range ins.SeasonalTrends {
		label := s.Season + ": " + i18n.TranslatedName(lang, s.Disease)
		seasonal = append(seasonal, barInput{label: label, tooltip: label, count: s.Count})
	}
	view.SeasonalTrends = chart(seasonal)

	locationLabel := i18n.T(lang, i18n.KeyLocation)
	submittedLabel := i18n.T(lang, i18n.KeySubmittedOn)
	for _, s := range ins.RecentSubmissions {
		sv := SubmissionView{
			Disease:   i18n.TranslatedName(lang, s.Disease),
			Thumbnail: s.Thumbnail,
			Submitted: submittedLabel + ": " + formatDate(s.Timestamp),
		}
		if s.Location != "" {
			sv.Location = locationLabel + ": " + s.Location
		}
		view.RecentSubmissions = append(view.RecentSubmissions, sv)
	}
	return view
}

// Empty reports whether there is nothing to chart or list.
func (v *InsightsView) Empty() bool {
	return v == nil || (len(v.RegionDiseases) == 0 && len(v.SeasonalTrends) == 0 && len(v.RecentSubmissions) == 0)
}

type barInput struct {
	label   string
	tooltip string
	count   int
}

func chart(items []barInput) []ChartBar {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].count > items[j].count
	})
	total := 0
	for _, it := range items {
		total += it.count
	}
	if total <= 0 {
		return nil
	}
	if len(items) > maxChartBars {
		items = items[:maxChartBars]
	}
	bars := make([]ChartBar, 0, len(items))
	for _, it := range items {
		pct := RoundConfidence(float64(it.count) / float64(total) * 100)
		bars = append(bars, ChartBar{
			Label:      truncateLabel(it.label),
			Tooltip:    fmt.Sprintf("%s: %d%%", it.tooltip, pct),
			Percentage: pct,
			Width:      max(pct, minBarWidth),
		})
	}
	return bars
}

func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelLength {
		return s
	}
	r := []rune(s)
	return string(r[:maxLabelLength-3]) + "..."
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// formatDate shows the date part of a server timestamp, or the raw value
// when it cannot be parsed.
func formatDate(ts string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ts
}
