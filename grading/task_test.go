package grading_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gsem/gradebot/grading"
	"github.com/stretchr/testify/require"
)

func TestParseTaskID(t *testing.T) {
	valid := map[string]string{
		"task1.py":   "task1",
		"task10.py":  "task10",
		"task007.py": "task007",
	}
	for filename, want := range valid {
		got, err := grading.ParseTaskID(filename)
		require.NoError(t, err, filename)
		require.Equal(t, want, got)
	}

	for _, filename := range []string{"task.py", "Task1.py", "task1.txt", "task1.py.bak", "solution.py", "task1 .py", "../task1.py"} {
		_, err := grading.ParseTaskID(filename)
		require.ErrorIs(t, err, grading.ErrWrongFilename, filename)
	}
}

func TestTaskNumber(t *testing.T) {
	n, ok := grading.TaskNumber("task12")
	require.True(t, ok)
	require.Equal(t, 12, n)

	for _, id := range []string{"task", "task-1", "12", "lab3"} {
		_, ok := grading.TaskNumber(id)
		require.False(t, ok, id)
	}
}

func TestAnswers(t *testing.T) {
	a := grading.DefaultAnswers()
	expected, ok := a.Expected("task1")
	require.True(t, ok)
	require.Equal(t, "5\r\n10\r\n", expected)

	ids := a.TaskIDs()
	require.Len(t, ids, 11)
	require.Equal(t, "task1", ids[0])
	require.Equal(t, "task2", ids[1])
	require.Equal(t, "task11", ids[10])

	a["task1"] = "changed"
	fresh, _ := grading.DefaultAnswers().Expected("task1")
	require.Equal(t, "5\r\n10\r\n", fresh)
}

func TestLoadAnswers(t *testing.T) {
	a, err := grading.LoadAnswers("")
	require.NoError(t, err)
	require.Len(t, a, 11)

	dir := t.TempDir()
	path := filepath.Join(dir, "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"task1": "42\n", "task2": "ok\n"}`), 0o644))
	a, err = grading.LoadAnswers(path)
	require.NoError(t, err)
	require.Equal(t, []string{"task1", "task2"}, a.TaskIDs())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"lab1": "x"}`), 0o644))
	_, err = grading.LoadAnswers(bad)
	require.Error(t, err)

	_, err = grading.LoadAnswers(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
