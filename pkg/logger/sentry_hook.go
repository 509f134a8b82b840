package logger

import (
	"errors"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// SentryHook пересылает записи logrus выбранных уровней в Sentry.
type SentryHook struct {
	levels []log.Level
}

// NewSentryHook создаёт хук для указанных уровней логирования.
func NewSentryHook(levels []log.Level) *SentryHook {
	return &SentryHook{levels: levels}
}

// Levels возвращает уровни, на которые подписан хук.
func (h *SentryHook) Levels() []log.Level {
	return h.levels
}

// Fire отправляет запись в Sentry. Если среди полей есть error, отправляется исключение.
func (h *SentryHook) Fire(entry *log.Entry) error {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevel(entry.Level))
		extras := make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			extras[k] = v
		}
		scope.SetExtras(extras)

		if err, ok := entry.Data[log.ErrorKey].(error); ok {
			sentry.CaptureException(errors.Join(errors.New(entry.Message), err))
			return
		}
		sentry.CaptureMessage(entry.Message)
	})
	return nil
}

func sentryLevel(level log.Level) sentry.Level {
	switch level {
	case log.PanicLevel, log.FatalLevel:
		return sentry.LevelFatal
	case log.ErrorLevel:
		return sentry.LevelError
	case log.WarnLevel:
		return sentry.LevelWarning
	case log.InfoLevel:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}
