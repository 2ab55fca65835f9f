// Package intent recognizes the one question the backend must always
// answer the same way: who created RoBot5320.
//
// Detection is plain substring containment over a fixed trigger table,
// deliberately not model-based, so the answer can never be hallucinated.
package intent

import "strings"

// CreatorAnswer is the fixed identity disclosure returned on a match.
const CreatorAnswer = "RoBot5320 được tạo ra và phát triển bởi anh Nguyễn Trường Quốc (2k5)."

// creatorTriggers covers the creator question in Vietnamese, with and
// without diacritics, and in English.
var creatorTriggers = []string{
	"nguồn gốc",
	"cha đẻ",
	"cha de",
	"ai tạo ra bạn",
	"ai tao ra ban",
	"ai tạo ra mày",
	"ai tao ra may",
	"ai làm ra bạn",
	"ai lam ra ban",
	"ai lập trình bạn",
	"ai lap trinh ban",
	"who created you",
	"who made you",
	"your creator",
}

// Detect reports whether the text asks about the assistant's creator.
// On a match it returns the canned answer. Matching is case-insensitive
// containment; no other normalization is applied.
func Detect(text string) (answer string, ok bool) {
	if text == "" {
		return "", false
	}

	folded := strings.ToLower(text)
	for _, trigger := range creatorTriggers {
		if strings.Contains(folded, trigger) {
			return CreatorAnswer, true
		}
	}
	return "", false
}
