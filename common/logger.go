package common

import (
	"github.com/sirupsen/logrus"
)

type LogLevel int32

const (
	DEBUG_INFO_DETAIL LogLevel = 1
	DEBUG_INFO        LogLevel = 2
	DEBUGGING         LogLevel = 8
	INFO              LogLevel = 16
	WARN              LogLevel = 32
	ERROR             LogLevel = 64
	FATAL             LogLevel = 128
)

var LogLevelSetting LogLevel = WARN

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		DisableLevelTruncation: true,
	})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetLogLevel adjusts both the engine-side filter and the logrus backend.
func SetLogLevel(level LogLevel) {
	LogLevelSetting = level
	switch {
	case level <= DEBUG_INFO:
		logger.SetLevel(logrus.TraceLevel)
	case level <= DEBUGGING:
		logger.SetLevel(logrus.DebugLevel)
	case level <= INFO:
		logger.SetLevel(logrus.InfoLevel)
	case level <= WARN:
		logger.SetLevel(logrus.WarnLevel)
	default:
		logger.SetLevel(logrus.ErrorLevel)
	}
}

func ShPrintf(logLevel LogLevel, format string, a ...interface{}) {
	if logLevel < LogLevelSetting {
		return
	}
	switch logLevel {
	case DEBUG_INFO_DETAIL, DEBUG_INFO:
		logger.Tracef(format, a...)
	case DEBUGGING:
		logger.Debugf(format, a...)
	case INFO:
		logger.Infof(format, a...)
	case WARN:
		logger.Warnf(format, a...)
	case ERROR:
		logger.Errorf(format, a...)
	case FATAL:
		logger.Fatalf(format, a...)
	}
}
