package social

import (
	"errors"
	"regexp"
	"strings"
)

// 用户名校验错误
var (
	ErrUsernameStart      = errors.New("username must start with a letter")
	ErrUsernameTooShort   = errors.New("username must be at least 3 characters")
	ErrUsernameTooLong    = errors.New("username must be at most 20 characters")
	ErrUsernameCharset    = errors.New("username may only contain lowercase letters, numbers and underscores")
	ErrUsernameDoubleUnd  = errors.New("username cannot contain consecutive underscores")
	ErrUsernameUnderscore = errors.New("username cannot begin or end with an underscore")
)

var (
	invalidUsernameChars = regexp.MustCompile(`[^a-z0-9_]`)
	repeatedUnderscores  = regexp.MustCompile(`_{2,}`)
	usernameCharset      = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// NormalizeUsername 规范化用户输入：转小写、去掉非法字符、合并连续下划线、去掉首尾下划线
func NormalizeUsername(input string) string {
	u := strings.ToLower(input)
	u = invalidUsernameChars.ReplaceAllString(u, "")
	u = repeatedUnderscores.ReplaceAllString(u, "_")
	return strings.Trim(u, "_")
}

// ValidateUsername 校验用户名，返回第一个不满足的规则
func ValidateUsername(u string) error {
	switch {
	case u == "" || u[0] < 'a' || u[0] > 'z':
		return ErrUsernameStart
	case len(u) < 3:
		return ErrUsernameTooShort
	case len(u) > 20:
		return ErrUsernameTooLong
	case !usernameCharset.MatchString(u):
		return ErrUsernameCharset
	case strings.Contains(u, "__"):
		return ErrUsernameDoubleUnd
	case strings.HasSuffix(u, "_"):
		return ErrUsernameUnderscore
	}
	return nil
}
