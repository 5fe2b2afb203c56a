// Package log wraps zerolog behind the call-site signatures the rest of
// the module uses: Debug/Info take a message and key-value pairs, Error
// also takes the error being reported.
package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
)

func initLogger() {
	loggerOnce.Do(func() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
			With().Timestamp().Logger().
			Level(zerolog.InfoLevel)
	})
}

func SetLevel(l Level) {
	initLogger()
	logger = logger.Level(zerologLevel(l))
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	withKVs(logger.Debug(), kv...).Msg(msg)
}

func Info(msg string, kv ...any) {
	initLogger()
	withKVs(logger.Info(), kv...).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	withKVs(logger.Error().Err(err), kv...).Msg(msg)
}

func withKVs(ev *zerolog.Event, kv ...any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}
