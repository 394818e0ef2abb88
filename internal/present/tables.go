package present

import "strings"

// Severity is how damaging a condition is, independent of confidence.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Condition kinds are the part of a class label after the crop prefix.
var severityByKind = map[string]Severity{
	"late_blight":            SeverityHigh,
	"bacterial_spot":         SeverityHigh,
	"mosaic_virus":           SeverityHigh,
	"yellow_leaf_curl_virus": SeverityHigh,
	"healthy":                SeverityLow,
	"septoria_leaf_spot":     SeverityLow,
	"target_spot":            SeverityLow,
}

// Used for classes outside the catalog, matched against the display name.
var severityKeywords = []struct {
	keyword  string
	severity Severity
}{
	{"late blight", SeverityHigh},
	{"bacterial spot", SeverityHigh},
	{"mosaic virus", SeverityHigh},
	{"yellow leaf curl virus", SeverityHigh},
	{"healthy", SeverityLow},
	{"septoria leaf spot", SeverityLow},
	{"target spot", SeverityLow},
}

var iconByKind = map[string]string{
	"early_blight":           "fas fa-seedling",
	"late_blight":            "fas fa-cloud-rain",
	"bacterial_spot":         "fas fa-bacteria",
	"leaf_mold":              "fas fa-leaf",
	"mosaic_virus":           "fas fa-virus",
	"septoria_leaf_spot":     "fas fa-bullseye",
	"spider_mites":           "fas fa-spider",
	"target_spot":            "fas fa-bullseye",
	"yellow_leaf_curl_virus": "fas fa-wind",
	"healthy":                "fas fa-heart",
}

const defaultDiseaseIcon = "fas fa-bug"

// Checked in order; the first keyword found in a step wins.
var preventionIcons = []struct {
	keyword string
	icon    string
}{
	{"water", "fas fa-tint"},
	{"irrigation", "fas fa-tint"},
	{"moisture", "fas fa-tint"},
	{"wet", "fas fa-tint"},
	{"rain", "fas fa-cloud-rain"},
	{"fungicide", "fas fa-spray-can"},
	{"spray", "fas fa-spray-can"},
	{"chemical", "fas fa-flask"},
	{"seed", "fas fa-seedling"},
	{"plant", "fas fa-seedling"},
	{"rotate", "fas fa-sync"},
	{"rotation", "fas fa-sync"},
	{"remove", "fas fa-trash"},
	{"destroy", "fas fa-trash"},
	{"space", "fas fa-expand"},
	{"spacing", "fas fa-expand"},
	{"distance", "fas fa-expand"},
	{"variety", "fas fa-leaf"},
	{"resistant", "fas fa-shield-alt"},
	{"harvest", "fas fa-shopping-basket"},
	{"weather", "fas fa-sun"},
	{"temperature", "fas fa-temperature-high"},
	{"mulch", "fas fa-layer-group"},
	{"soil", "fas fa-mountain"},
	{"hygienic", "fas fa-hands-wash"},
	{"clean", "fas fa-broom"},
	{"sanitize", "fas fa-pump-soap"},
	{"prune", "fas fa-cut"},
	{"cut", "fas fa-cut"},
	{"tools", "fas fa-tools"},
}

const defaultPreventionIcon = "fas fa-check-circle"

// conditionKind strips the crop prefix and any parenthesized qualifier:
// "Tomato__spider_mites_(two_spotted_spider_mite)" is "spider_mites".
func conditionKind(class string) string {
	kind := class
	if i := strings.Index(kind, "__"); i >= 0 {
		kind = kind[i+2:]
	}
	if i := strings.Index(kind, "("); i >= 0 {
		kind = kind[:i]
	}
	return strings.Trim(strings.ToLower(kind), "_ ")
}

// SeverityOf classifies a class label. englishName is consulted only when
// the class itself is not in the table.
func SeverityOf(class, englishName string) Severity {
	if s, ok := severityByKind[conditionKind(class)]; ok {
		return s
	}
	name := strings.ToLower(englishName)
	for _, k := range severityKeywords {
		if strings.Contains(name, k.keyword) {
			return k.severity
		}
	}
	return SeverityMedium
}

// DiseaseIcon returns the icon class for a class label.
func DiseaseIcon(class string) string {
	if icon, ok := iconByKind[conditionKind(class)]; ok {
		return icon
	}
	return defaultDiseaseIcon
}

// PreventionIcon picks an icon by keyword.
func PreventionIcon(step string) string {
	lower := strings.ToLower(step)
	for _, p := range preventionIcons {
		if strings.Contains(lower, p.keyword) {
			return p.icon
		}
	}
	return defaultPreventionIcon
}
