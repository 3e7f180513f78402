// Package logging wires slog to a tinted stdout handler plus a rotating
// log file.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const LogFileName = "mirrorbox.log"

// Setup installs the default slog logger. The returned closer flushes and
// closes the underlying log file.
func Setup(logDir string) (io.Closer, error) {
	fileWriter, err := NewRotatingWriter(logDir, LogFileName)
	if err != nil {
		return nil, err
	}

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	fileHandler := slog.NewTextHandler(fileWriter, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler, fileHandler)))
	return fileWriter, nil
}
