// Package slug 从展示名称生成URL友好的标识符
//
// 规则与前端约定保持一致：
// 1. 全部转小写
// 2. Unicode NFD分解后去掉组合变音符（"sách" → "sach"）
// 3. 连续的非[a-z0-9]字符压缩为单个连字符
// 4. 去掉首尾连字符
//
// Make是纯函数且幂等：Make(Make(x)) == Make(x)
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Make 生成slug
// 示例：Make("Đắc Nhân Tâm") == "ac-nhan-tam"
func Make(name string) string {
	s := strings.ToLower(name)

	// NFD分解 + 去除组合变音符（Unicode类别Mn）
	s = norm.NFD.String(s)
	var stripped strings.Builder
	stripped.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		stripped.WriteRune(r)
	}

	// 非[a-z0-9]的连续字符 → 单个连字符
	var b strings.Builder
	b.Grow(stripped.Len())
	pendingHyphen := false
	for _, r := range stripped.String() {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}
