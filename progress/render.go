package progress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gsem/gradebot/grading"
	"github.com/gsem/gradebot/sessions"
)

// EmptyProgress is what Render returns for a map without entries.
const EmptyProgress = "No tasks completed yet"

// Render lists the progress map one task per line, ordered by task number
// so task2 comes before task10.
func Render(progress sessions.Progress) string {
	if len(progress) == 0 {
		return EmptyProgress
	}

	ids := make([]string, 0, len(progress))
	for id := range progress {
		ids = append(ids, id)
	}
	SortTaskIDs(ids)

	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte('\n')
		}
		mark := "not done"
		if progress[id] {
			mark = "done"
		}
		fmt.Fprintf(&sb, "%s: %s", id, mark)
	}
	return sb.String()
}

// Summary is the one-line headline of a progress reply.
func Summary(progress sessions.Progress, total int) string {
	done := 0
	for _, ok := range progress {
		if ok {
			done++
		}
	}
	return fmt.Sprintf("completed %d of %d", done, total)
}

// SortTaskIDs orders ids by task number. Ids without a number sort last,
// alphabetically.
func SortTaskIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ni, okI := grading.TaskNumber(ids[i])
		nj, okJ := grading.TaskNumber(ids[j])
		switch {
		case okI && okJ:
			if ni != nj {
				return ni < nj
			}
			return ids[i] < ids[j]
		case okI != okJ:
			return okI
		default:
			return ids[i] < ids[j]
		}
	})
}
