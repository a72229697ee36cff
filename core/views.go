package core

import (
	"sort"
	"strings"
)

type ViewFilter string

const (
	FilterAll       ViewFilter = "all"
	FilterPending   ViewFilter = "pending"
	FilterCompleted ViewFilter = "completed"
)

func (f ViewFilter) Valid() bool {
	return f == FilterAll || f == FilterPending || f == FilterCompleted
}

type ViewSort string

const (
	SortTitle     ViewSort = "title"
	SortCreatedAt ViewSort = "createdAt"
)

func (s ViewSort) Valid() bool {
	return s == SortTitle || s == SortCreatedAt
}

// DeriveView projects tasks through filter and sort without touching the
// input slice. Title sorts ascending lexicographic, createdAt newest first.
func DeriveView(tasks []Task, filter ViewFilter, by ViewSort) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		switch filter {
		case FilterPending:
			if t.Status != StatusPending {
				continue
			}
		case FilterCompleted:
			if t.Status != StatusCompleted {
				continue
			}
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch by {
		case SortTitle:
			return strings.Compare(out[i].Title, out[j].Title) < 0
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})

	return out
}
