package configuration

import (
	"bufio"
	"os"
	"strings"
)

// LoadEnvFromFile seeds the process environment from dotenv-style files so
// the scheduler can run outside a container without exporting every OAuth
// client id, secret, and database URL by hand. Variables already present in
// the environment always win over file values.
//
// Lines are KEY=VALUE, optionally quoted or prefixed with "export"; blank
// lines and # comments are skipped. Missing files are skipped silently.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			line = strings.TrimPrefix(line, "export ")
			idx := strings.Index(line, "=")
			if idx == -1 {
				continue
			}
			key := strings.TrimSpace(line[:idx])
			if key == "" {
				continue
			}
			val := strings.Trim(strings.TrimSpace(line[idx+1:]), "\"'")
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
		_ = f.Close()
	}
}
