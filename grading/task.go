package grading

import (
	"regexp"
	"strconv"
)

var (
	taskFilePattern = regexp.MustCompile(`^(task(\d+))\.py$`)
	taskIDPattern   = regexp.MustCompile(`^task(\d+)$`)
)

// ParseTaskID maps a submitted filename like "task3.py" to its task id "task3".
func ParseTaskID(filename string) (string, error) {
	m := taskFilePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", ErrWrongFilename
	}
	return m[1], nil
}

// TaskNumber returns N of a "taskN" identifier.
func TaskNumber(taskID string) (int, bool) {
	m := taskIDPattern.FindStringSubmatch(taskID)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
