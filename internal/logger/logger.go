package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log — глобальный структурированный логгер приложения.
var Log *logrus.Logger

// Init инициализирует логгер. По умолчанию JSON формат (production).
func Init(level string) {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter переключает логи на текстовый формат (development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}
