package common

import "strings"

// AllowedLabels is the fixed, process-wide set of labels an item may carry.
// Module views and the dashboard histogram are keyed by these values.
var AllowedLabels = []string{"Recon", "Mission", "Medical", "Emergency", "Notice"}

// IsAllowedLabel reports whether label is a member of AllowedLabels.
func IsAllowedLabel(label string) bool {
	for _, l := range AllowedLabels {
		if l == label {
			return true
		}
	}
	return false
}

// CanonicalLabel resolves label to its AllowedLabels spelling, ignoring
// case, so module URLs like /module/recon reach the Recon view. The second
// return is false for labels outside the set.
func CanonicalLabel(label string) (string, bool) {
	for _, l := range AllowedLabels {
		if strings.EqualFold(l, label) {
			return l, true
		}
	}
	return "", false
}

// FilterLabels drops unknown labels and duplicates, preserving the order in
// which labels were submitted. Unknown labels are discarded silently, not
// rejected.
func FilterLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	filtered := make([]string, 0, len(labels))
	for _, l := range labels {
		if !IsAllowedLabel(l) {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		filtered = append(filtered, l)
	}
	return filtered
}
