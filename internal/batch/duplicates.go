package batch

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"cardreader/internal/models"
)

// FindDuplicates pairs records that share an email address or whose names
// are at least threshold similar. Records are left untouched.
func FindDuplicates(records []models.CardRecord, threshold float64) []models.DuplicatePair {
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false

	var pairs []models.DuplicatePair
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if a.Email != "" && strings.EqualFold(a.Email, b.Email) {
				pairs = append(pairs, models.DuplicatePair{First: i, Second: j, Similarity: 1})
				continue
			}
			if a.Name == "" || b.Name == "" {
				continue
			}
			if sim := strutil.Similarity(a.Name, b.Name, metric); sim >= threshold {
				pairs = append(pairs, models.DuplicatePair{First: i, Second: j, Similarity: sim})
			}
		}
	}
	return pairs
}
