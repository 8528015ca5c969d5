// Package router 实现了响应编排引擎：
// 复杂度评分、能力探测、路由决策级联与后端回退循环。
package router

import "strings"

// 复杂度分类标签。
const (
	ComplexityComplex  = "complex"
	ComplexityModerate = "moderate"
	ComplexitySimple   = "simple"
)

// 五个独立指标的固定权重。总分截断在 1.0。
const (
	weightLength      = 0.3
	weightTechnical   = 0.4
	weightDataViz     = 0.2
	weightCreative    = 0.3
	weightProgramming = 0.5
)

// 各指标的触发词表，对小写化后的消息做子串判断。
var (
	technicalWords = []string{
		"analyze", "analysis", "compare", "comparison", "evaluate",
		"assess", "research", "in depth", "detailed", "explain why",
	}
	dataVizWords = []string{
		"chart", "graph", "plot", "visualize", "visualization",
		"statistics", "dataset", "trend",
	}
	creativeWords = []string{
		"story", "poem", "creative", "imagine", "essay", "lyrics",
		"write me", "fiction",
	}
	programmingWords = []string{
		"code", "program", "function", "debug", "algorithm", "script",
		"python", "javascript", "sql", "regex", "compile",
	}
)

// Score 计算消息的启发式复杂度，纯函数，结果在 [0,1] 区间。
// 每个指标独立判定并贡献固定权重，总和截断到 1.0。
func Score(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	if len(text) > 200 {
		score += weightLength
	}
	if containsAny(lower, technicalWords) {
		score += weightTechnical
	}
	if containsAny(lower, dataVizWords) {
		score += weightDataViz
	}
	if containsAny(lower, creativeWords) {
		score += weightCreative
	}
	if containsAny(lower, programmingWords) {
		score += weightProgramming
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Category 将分数映射为分类标签：complex(>0.7)、moderate(>0.3)、simple。
func Category(score float64) string {
	switch {
	case score > 0.7:
		return ComplexityComplex
	case score > 0.3:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
