package report

import (
	"sort"

	"benchviz/internal/model"
)

// CountByName counts metric lines per name, most frequent first. Ties keep
// the order in which names first appear. Lines without a name are skipped.
func CountByName(metrics []model.Metric) []model.MetricCount {
	index := make(map[string]int)
	counts := make([]model.MetricCount, 0)
	for _, m := range metrics {
		if m.Name == "" {
			continue
		}
		i, ok := index[m.Name]
		if !ok {
			i = len(counts)
			index[m.Name] = i
			counts = append(counts, model.MetricCount{Name: m.Name})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}
