package todo

// Stats aggregates a task list.
type Stats struct {
	Total      int
	Completed  int
	Pending    int
	ByPriority map[Priority]int // always holds High, Medium and Low
}

// Summarize counts tasks by completion and by priority.
func Summarize(tasks []Task) Stats {
	stats := Stats{
		ByPriority: map[Priority]int{
			PriorityHigh:   0,
			PriorityMedium: 0,
			PriorityLow:    0,
		},
	}
	for _, t := range tasks {
		stats.Total++
		if t.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
		stats.ByPriority[t.Priority]++
	}
	return stats
}

// CompletionRate returns the completed share in [0, 1], or 0 for no tasks.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}
