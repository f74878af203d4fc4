// Package node 提供模型输出处理的小工具
package node

import (
	"fmt"
	"unicode/utf8"
)

// PreviewRaw 截取模型原始输出的前 maxRunes 个字符用于日志，
// 被截断时追加剩余字符数；maxRunes <= 0 时不输出内容
func PreviewRaw(raw string, maxRunes int) string {
	total := utf8.RuneCountInString(raw)
	if maxRunes <= 0 {
		return fmt.Sprintf("[%d chars omitted]", total)
	}
	if total <= maxRunes {
		return raw
	}
	n := 0
	for i := range raw {
		if n == maxRunes {
			return fmt.Sprintf("%s...[+%d chars]", raw[:i], total-maxRunes)
		}
		n++
	}
	return raw
}
