// Package sl — мелкие помощники для структурированного логирования через slog.
package sl

import "log/slog"

// Err упаковывает ошибку в атрибут с ключом "error", чтобы во всех
// журналах сервиса ошибки выводились одинаково:
//
//	log.Error("failed to publish article", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
