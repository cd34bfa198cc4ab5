package helpers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LogWriter returns the rotating file writer backing the service log.
func LogWriter() io.Writer {
	return &lumberjack.Logger{
		Filename:   filepath.Join(TempDir(), config.LogFile),
		MaxSize:    1,
		MaxBackups: 2,
	}
}

func InitLogging(writers []io.Writer) error {
	err := os.MkdirAll(TempDir(), 0o750)
	if err != nil {
		return err
	}

	logWriters := []io.Writer{LogWriter()}

	if len(writers) > 0 {
		logWriters = append(logWriters, writers...)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	log.Logger = log.Output(io.MultiWriter(logWriters...)).
		With().Timestamp().Caller().Logger()

	return nil
}
