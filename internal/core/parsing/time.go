// Package parsing 將抓取到的原始文字正規化為結構化食譜欄位
package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDurationPattern = regexp.MustCompile(`\bpt(?:(\d+)h)?(?:(\d+)m)?`)
	hourPattern        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)(?:\b|\d)`)
	minutePattern      = regexp.MustCompile(`(\d+)\s*(?:minutes?|mins?|m)\b`)
	clockPattern       = regexp.MustCompile(`(\d+):(\d{2})`)
	bareNumberPattern  = regexp.MustCompile(`\b(\d+)\b`)
	firstIntPattern    = regexp.MustCompile(`\d+`)
	ratingPattern      = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// 份量合理範圍
const (
	minServings     = 1
	maxServings     = 50
	defaultServings = 1

	// 無單位數字視為分鐘的上限
	maxBareMinutes = 180
)

// ParseMinutes 解析時間文字為分鐘數，無法判斷時回傳 0
//
// 依序嘗試 ISO-8601 (PT1H30M)、"1 hour 30 mins"、"1:30"，最後才把 180 以內的純數字當成分鐘。
func ParseMinutes(text string) int {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return 0
	}

	if m := isoDurationPattern.FindStringSubmatch(t); m != nil && (m[1] != "" || m[2] != "") {
		return atoi(m[1])*60 + atoi(m[2])
	}

	total := 0
	if m := hourPattern.FindStringSubmatch(t); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		total += int(h * 60)
	}
	if m := minutePattern.FindStringSubmatch(t); m != nil {
		total += atoi(m[1])
	}
	if total > 0 {
		return total
	}

	if m := clockPattern.FindStringSubmatch(t); m != nil {
		return atoi(m[1])*60 + atoi(m[2])
	}

	if m := bareNumberPattern.FindStringSubmatch(t); m != nil {
		if n := atoi(m[1]); n <= maxBareMinutes {
			return n
		}
	}
	return 0
}

// SplitTimes 只有總時間時，以 25% 準備、其餘烹調拆分
func SplitTimes(prep, cook, total int) (int, int) {
	if prep == 0 && cook == 0 && total > 0 {
		prep = int(float64(total) * 0.25)
		cook = total - prep
	}
	return prep, cook
}

// ParseServings 取第一個整數，超出 1..50 或找不到時回傳 1
func ParseServings(text string) int {
	m := firstIntPattern.FindString(text)
	if m == "" {
		return defaultServings
	}
	n := atoi(m)
	if n < minServings || n > maxServings {
		return defaultServings
	}
	return n
}

// ParseRating 解析 0..5 的評分，無數字時回傳 nil
func ParseRating(text string) *float64 {
	m := ratingPattern.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	v = math.Max(0, math.Min(5, v))
	return &v
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
