package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	logLevelVar       = "LOG_LEVEL"
	folderEnvVar      = "DATA_DIR"
	submissionsVar    = "SUBMISSIONS_DIR"
	exportFileVar     = "EXPORT_FILE"
	defaultDataFolder = "./data"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "GSEM Bot")
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, "DEV"))
}

func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelVar, "info"))
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, defaultDataFolder)
}

func (e EnvVars) GetTokensFile() string {
	return filepath.Join(e.GetDataFolder(), "tokens.json")
}

func (e EnvVars) GetSessionsFile() string {
	return filepath.Join(e.GetDataFolder(), "sessions.json")
}

func (e EnvVars) GetSubmissionsFolder() string {
	return GetEnv(submissionsVar, filepath.Join(e.GetDataFolder(), "tasks"))
}

func (e EnvVars) GetRosterFile() string {
	return filepath.Join(e.GetDataFolder(), "students.txt")
}

func (e EnvVars) GetExportFile() string {
	return GetEnv(exportFileVar, filepath.Join(e.GetDataFolder(), "student-progress.csv"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvAsBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
