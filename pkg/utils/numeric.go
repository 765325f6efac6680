package utils

import "strings"

// 数值字段在界面上按千分位展示 (如 "1.250.000")，落到提交载荷前必须还原成纯数字。
// DeformatNumber / FormatNumber 互为逆操作：Format(Deformat(x)) 对任意合法输入幂等。

// DeformatNumber 去掉千分位分隔符，只保留数字
func DeformatNumber(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatNumber 为纯数字串补千分位分隔符 (土耳其习惯用 ".")
// 输入含分隔符也可以，先归一化再分组
func FormatNumber(s string) string {
	digits := DeformatNumber(s)
	if digits == "" {
		return ""
	}

	n := len(digits)
	var b strings.Builder
	b.Grow(n + n/3)

	for i, r := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}
