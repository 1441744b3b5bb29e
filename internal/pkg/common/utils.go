package common

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NormalizeSpace 去除前後空白並將連續空白合併為一格
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase 將每個單字首字母大寫
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ParseID 解析路徑參數中的 int64 id
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidationErrorf("invalid id %q", raw)
	}
	return id, nil
}

// Truncate 以 rune 為單位截斷字串
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
