package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New инициализирует логгер. level переопределяет уровень по умолчанию, пустой или нераспознанный
// уровень игнорируется.
func New(output io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(new(logrus.JSONFormatter))
	l.SetLevel(logrus.InfoLevel)

	// перезаписываем ряд настроек для окружений отличных от продакшн
	if os.Getenv("GIN_MODE") != "release" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(new(logrus.TextFormatter))
	}

	if level == "" {
		return l
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		l.WithError(err).Warnf("unknown log level %q, keeping %s", level, l.GetLevel())
		return l
	}
	l.SetLevel(parsed)
	return l
}
