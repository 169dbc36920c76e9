package config

import (
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the process-wide logger. It is usable before InitLogger is
// called (info level) so package init paths can log too.
var Logger = newLogger("info")

// InitLogger re-creates the global logger with the configured level.
func InitLogger(cfg LoggingConfig) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	Logger = newLogger(level)
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}
