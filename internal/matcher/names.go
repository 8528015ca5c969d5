package matcher

import (
	"regexp"
	"strings"
)

// namePatterns 是有序的姓名提取模式，首个产生候选的模式胜出。
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
	regexp.MustCompile(`(?i)\bi'm\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
	regexp.MustCompile(`(?i)\bcall me\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
	regexp.MustCompile(`(?i)\bi am\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
	regexp.MustCompile(`(?i)\b([a-zA-Z]+(?:\s+[a-zA-Z]+)?)\s+is my name\b`),
}

// nameStopWords 是不会出现在姓名中的填充词与状态词。
// "I'm really busy" 这类句子的候选在清洗后会被全部剔除。
var nameStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"really": {}, "very": {}, "so": {}, "just": {}, "quite": {}, "too": {},
	"not": {}, "still": {}, "currently": {}, "now": {}, "also": {},
	"busy": {}, "tired": {}, "fine": {}, "good": {}, "great": {}, "okay": {},
	"ok": {}, "sure": {}, "sorry": {}, "here": {}, "back": {}, "done": {},
	"going": {}, "trying": {}, "working": {}, "looking": {}, "new": {},
}

// validName 校验清洗后的候选：长度 [2,30]，仅字母和空格。
var validName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z ]{0,28}[a-zA-Z]$`)

// ExtractName 从原始输入中提取用户姓名。
// 按模式顺序取首个候选，清洗后不可信则返回空字符串。
func ExtractName(input string) string {
	for _, re := range namePatterns {
		match := re.FindStringSubmatch(input)
		if len(match) < 2 {
			continue
		}
		if name := cleanName(match[1]); name != "" {
			return name
		}
		// 首个产生候选的模式已消费，候选不可信即放弃
		return ""
	}
	return ""
}

// cleanName 剔除填充词、做长度与字符校验，并将结果 title-case。
func cleanName(candidate string) string {
	var kept []string
	for _, word := range strings.Fields(candidate) {
		if _, stop := nameStopWords[strings.ToLower(word)]; stop {
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		return ""
	}

	name := strings.Join(kept, " ")
	if !validName.MatchString(name) {
		return ""
	}
	return titleCase(name)
}

// titleCase 将每个单词首字母大写，其余小写。
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
