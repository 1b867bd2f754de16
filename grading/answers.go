package grading

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// Answers maps a task id to the exact output its program must print.
type Answers map[string]string

// builtinAnswers is the answer table of the course the bot was written for.
var builtinAnswers = Answers{
	"task1":  "5\r\n10\r\n",
	"task2":  "5\r\n15\r\n5\r\n20.0\r\n10.0\r\n",
	"task3":  "Володя\r\nВолодя из группы ЭУ-210212\r\n",
	"task4":  "2469108642\r\n",
	"task5":  "28294\r\n",
	"task6":  "1.8963931992918867e+46\r\n",
	"task7":  "0\r\n",
	"task8":  "-25\r\n",
	"task9":  "True\r\nFalse\r\nFalse\r\nTrue\r\n",
	"task10": "True\r\nFalse\r\n",
	"task11": "8\r\n",
}

// DefaultAnswers returns a copy of the built-in answer table.
func DefaultAnswers() Answers {
	a := make(Answers, len(builtinAnswers))
	for k, v := range builtinAnswers {
		a[k] = v
	}
	return a
}

// LoadAnswers reads a JSON object of task id -> expected output. An empty
// path yields the built-in table.
func LoadAnswers(path string) (Answers, error) {
	if path == "" {
		return DefaultAnswers(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[LoadAnswers] read")
	}
	var a Answers
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrap(err, "[LoadAnswers] decode")
	}
	for taskID := range a {
		if _, ok := TaskNumber(taskID); !ok {
			return nil, errors.Errorf("[LoadAnswers] invalid task id %q", taskID)
		}
	}
	return a, nil
}

// Expected returns the answer for taskID.
func (a Answers) Expected(taskID string) (string, bool) {
	v, ok := a[taskID]
	return v, ok
}

// TaskIDs lists the known tasks in numeric order.
func (a Answers) TaskIDs() []string {
	ids := make([]string, 0, len(a))
	for k := range a {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, _ := TaskNumber(ids[i])
		nj, _ := TaskNumber(ids[j])
		return ni < nj
	})
	return ids
}
