// Package sl содержит вспомогательные функции для формирования
// структурированных полей лога slog.
package sl

import "log/slog"

// Err возвращает поле "error" с текстом ошибки. Для nil значение пустое.
//
//	log.Error("failed to create user", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserUID возвращает поле "user_uid".
func UserUID(uid string) slog.Attr {
	return slog.String("user_uid", uid)
}
