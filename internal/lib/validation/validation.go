// Package validation содержит проверки формата email, имени пользователя и пароля.
//
// Проверки выполняются до хеширования и обращения к базе данных.
// Каждая функция возвращает Result и никогда не паникует.
package validation

import (
	"regexp"
	"unicode/utf16"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
	passwordMinLen = 8
	// bcrypt не принимает пароли длиннее 72 байт.
	passwordMaxBytes = 72
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
)

// Result — результат проверки. Message заполнен только при Valid == false.
type Result struct {
	Valid   bool
	Message string
}

func ok() Result {
	return Result{Valid: true}
}

// textLen считает длину в кодовых единицах UTF-16: символ вне BMP (например, эмодзи) занимает две.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func fail(msg string) Result {
	return Result{Valid: false, Message: msg}
}

// Email проверяет структуру адреса local@domain.tld.
// Это быстрая структурная проверка, а не разбор по RFC 5322.
func Email(email string) Result {
	if !emailRe.MatchString(email) {
		return fail("Invalid email format")
	}
	return ok()
}

// Username: от 3 до 20 символов, только латинские буквы, цифры и подчёркивание.
func Username(username string) Result {
	n := textLen(username)
	if n < usernameMinLen {
		return fail("Username must be at least 3 characters long")
	}
	if n > usernameMaxLen {
		return fail("Username must be at most 20 characters long")
	}
	if !usernameRe.MatchString(username) {
		return fail("Username can only contain letters, numbers, and underscores")
	}
	return ok()
}

// Password: минимум 8 символов и не больше 72 байт, хотя бы одна строчная, одна заглавная буква и одна цифра.
// Спецсимволы не требуются.
func Password(password string) Result {
	if textLen(password) < passwordMinLen {
		return fail("Password must be at least 8 characters long")
	}
	if len(password) > passwordMaxBytes {
		return fail("Password must be at most 72 bytes long")
	}
	if !lowerRe.MatchString(password) {
		return fail("Password must contain at least one lowercase letter")
	}
	if !upperRe.MatchString(password) {
		return fail("Password must contain at least one uppercase letter")
	}
	if !digitRe.MatchString(password) {
		return fail("Password must contain at least one number")
	}
	return ok()
}

// Registration проверяет все поля регистрации по порядку: email, username, password.
// Возвращает первое нарушение.
func Registration(email, username, password string) Result {
	for _, r := range []Result{Email(email), Username(username), Password(password)} {
		if !r.Valid {
			return r
		}
	}
	return ok()
}
