package db

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/pressly/goose/v3"
)

// gooseLogger routes goose output through the service logger.
type gooseLogger struct {
	log logging.Logger
}

func newGooseLogger(log logging.Logger) goose.Logger {
	if log == nil {
		return goose.NopLogger()
	}
	return &gooseLogger{log: log.With("component", "migrate")}
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.log.Info(context.Background(), gooseMessage(format, v...))
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(context.Background(), gooseMessage(format, v...))
	os.Exit(1)
}

func gooseMessage(format string, v ...any) string {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	return strings.TrimPrefix(msg, "goose: ")
}
