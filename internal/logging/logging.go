// Package logging は診断用ロガーを作成する
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// New はコンソール形式のロガーを作成する
// verbose が true の場合はDEBUGレベルまで出力する
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
