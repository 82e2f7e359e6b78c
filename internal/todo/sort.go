package todo

import "sort"

// SortForDisplay orders tasks by ascending due date, then by priority rank.
// If any due date fails to parse, the whole list is ordered by priority rank
// only. The sort is stable, so equal keys keep insertion order.
func SortForDisplay(tasks []Task) {
	if !allDatesParse(tasks) {
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
		})
		return
	}

	// Due dates share one fixed layout, so string order is date order.
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].DueDate != tasks[j].DueDate {
			return tasks[i].DueDate < tasks[j].DueDate
		}
		return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
	})
}

func allDatesParse(tasks []Task) bool {
	for _, t := range tasks {
		if _, err := t.Due(); err != nil {
			return false
		}
	}
	return true
}
