package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Out = os.Stdout
	// LOG_TO_FILE=true switches to a dated file under ./logs (useful outside
	// systemd/docker where stdout is not collected).
	if os.Getenv("LOG_TO_FILE") == "true" {
		cwd, err := os.Getwd()
		if err == nil {
			logsDir := filepath.Join(cwd, "logs")
			if mkErr := os.MkdirAll(logsDir, 0o755); mkErr == nil {
				name := fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), os.Getenv("ENV"))
				f, openErr := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
				if openErr == nil {
					logger.Out = f
				} else {
					log.Warnf("Failed to open log file %s: %v, falling back to stdout", name, openErr)
				}
			}
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(log.DebugLevel)
}

// GetLogger returns an entry annotated with the calling function and line.
func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)
	functionObject := runtime.FuncForPC(function)
	return logger.WithFields(log.Fields{
		"function": functionObject.Name(),
		"file":     file,
		"line":     line,
	})
}
