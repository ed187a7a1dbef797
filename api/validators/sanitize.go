package validators

import "strings"

// SanitizeString trims input, collapses runs of whitespace to one space and
// truncates to maxLen runes. Part numbers are pasted from invoices and labels
// often with tabs or double spaces in them.
func SanitizeString(input string, maxLen int) string {
	collapsed := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen]))
	}
	return collapsed
}
