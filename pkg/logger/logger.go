package logger

import (
	"io"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger описывает минимальный интерфейс структурированного логгера,
// достаточный для использования в handler'ах и middleware.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type logrusLogger struct {
	entry *log.Entry
}

// Default возвращает логгер на базе глобального logrus.
func Default() Logger {
	return &logrusLogger{entry: log.NewEntry(log.StandardLogger())}
}

// New возвращает логгер поверх переданного экземпляра logrus.
func New(l *log.Logger) Logger {
	return &logrusLogger{entry: log.NewEntry(l)}
}

func (l *logrusLogger) Info(msg string, fields map[string]any) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *logrusLogger) Error(msg string, fields map[string]any) {
	l.entry.WithFields(fields).Error(msg)
}

// SetupParams описывает настройки глобального логгера процесса.
type SetupParams struct {
	Level       string
	File        string // пусто: только stdout
	ToStdout    bool
	JSON        bool
	Environment string
	SentryDSN   string // пусто: Sentry отключён
}

// Setup настраивает глобальный logrus: уровень, формат, ротацию файла
// и хук Sentry для ошибок.
func Setup(params SetupParams) {
	if params.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if params.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              params.SentryDSN,
			Environment:      params.Environment,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Errorf("sentry.Init: %s", err)
		} else {
			log.AddHook(NewSentryHook([]log.Level{
				log.PanicLevel,
				log.FatalLevel,
				log.ErrorLevel,
			}))
			log.Infoln("Sentry подключён")
		}
	}

	log.SetLevel(GetLevel(params.Level))
	log.SetOutput(output(params))
}

func output(params SetupParams) io.Writer {
	if params.File == "" {
		return os.Stdout
	}

	fileName := params.File
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}

	rotating := &lumberjack.Logger{
		Filename:  fileName,
		MaxSize:   50, // мегабайты
		LocalTime: false,
		Compress:  true,
	}

	if params.ToStdout {
		return NewCombinedWriter(os.Stdout, rotating)
	}
	return rotating
}

// GetLevel переводит строковое название уровня в logrus.Level.
// Неизвестные значения трактуются как info.
func GetLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
