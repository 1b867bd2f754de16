package config

import "time"

type GradingConfig interface {
	GetInterpreter() string
	GetGradingTimeout() time.Duration
	GetGradingWorkers() int
	GetStyleCheckEnabled() bool
	GetFlake8Binary() string
	GetAnswersFile() string
}

type Grading struct{}

var _ GradingConfig = Grading{}

// GetInterpreter returns the program submissions are run with. The built-in
// answers end lines with "\r\n" as Python prints them on Windows; on Linux
// and macOS python3 prints "\n", so those deployments need ANSWERS_FILE.
func (Grading) GetInterpreter() string {
	return GetEnv("PYTHON_INTERPRETER", "python3")
}

func (Grading) GetGradingTimeout() time.Duration {
	timeout, err := time.ParseDuration(GetEnv("GRADING_TIMEOUT", "10s"))
	if err != nil {
		return 10 * time.Second
	}
	return timeout
}

func (Grading) GetGradingWorkers() int {
	return GetEnvAsInt("GRADING_WORKERS", 2)
}

func (Grading) GetStyleCheckEnabled() bool {
	return GetEnvAsBool("STYLE_CHECK_ENABLED", true)
}

func (Grading) GetFlake8Binary() string {
	return GetEnv("FLAKE8_BINARY", "flake8")
}

// GetAnswersFile returns an optional JSON file overriding the built-in answer table.
// Answers are compared byte for byte, line endings included.
func (Grading) GetAnswersFile() string {
	return GetEnv("ANSWERS_FILE", "")
}
