package common

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v)
}

// ParseModelJSON 解析模型回覆的 JSON，失敗時補上鍵的雙引號再試一次
func ParseModelJSON(data string, v interface{}) error {
	err := ParseJSON(data, v)
	if err == nil {
		return nil
	}
	if quoted := QuoteJSONKeys(data); quoted != data {
		if retry := ParseJSON(quoted, v); retry == nil {
			return nil
		}
	}
	return err
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

// ExtractJSONObject 擷取模型回覆中最外層的 {...}
func ExtractJSONObject(content string) (string, bool) {
	return extractBetween(content, "{", "}")
}

// ExtractJSONArray 擷取模型回覆中最外層的 [...]
func ExtractJSONArray(content string) (string, bool) {
	return extractBetween(content, "[", "]")
}

func extractBetween(content, open, close string) (string, bool) {
	start := strings.Index(content, open)
	end := strings.LastIndex(content, close)
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}
