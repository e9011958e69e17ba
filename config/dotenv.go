package config

import (
	"bufio"
	"os"
	"strings"
)

// Prefixes of the variables Load reads. LoadDotEnv ignores everything
// else so a shared .env cannot leak unrelated settings into the
// process.
var dotEnvPrefixes = []string{"LH3_", "ASK_"}

// LoadDotEnv seeds LH3_* and ASK_* variables from a KEY=VALUE file for
// local runs. Variables already set in the environment win; a missing
// file is not an error.
func LoadDotEnv(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, value)
	}
}

func parseDotEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if !hasDotEnvPrefix(key) {
		return "", "", false
	}
	return key, strings.Trim(strings.TrimSpace(value), `"'`), true
}

func hasDotEnvPrefix(key string) bool {
	for _, prefix := range dotEnvPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
