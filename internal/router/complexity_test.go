package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyAndTrivial(t *testing.T) {
	assert.Equal(t, 0.0, Score(""))
	assert.Equal(t, 0.0, Score("hello there"))
}

func TestScoreSingleIndicators(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    float64
	}{
		{"length only", strings.Repeat("word ", 50), 0.3},
		{"technical", "please analyze this for me", 0.4},
		{"data viz", "show me a chart of it", 0.2},
		{"creative", "tell me a story", 0.3},
		{"programming", "debug my function", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.message), 1e-9)
		})
	}
}

func TestScoreIsClampedToOne(t *testing.T) {
	// 触发全部五个指标：总权重 1.7，截断到 1.0
	message := strings.Repeat("x", 201) +
		" analyze the dataset, plot a chart, write a story and debug the code"
	assert.Equal(t, 1.0, Score(message))
}

func TestScoreMonotonicInTriggeredIndicators(t *testing.T) {
	// 逐个叠加指标，分数单调不减
	steps := []string{
		"hello",
		"hello analyze",
		"hello analyze chart",
		"hello analyze chart story",
		"hello analyze chart story code",
	}
	prev := -1.0
	for _, msg := range steps {
		score := Score(msg)
		assert.GreaterOrEqual(t, score, prev, "score must not decrease for %q", msg)
		assert.LessOrEqual(t, score, 1.0)
		assert.GreaterOrEqual(t, score, 0.0)
		prev = score
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, ComplexitySimple, Category(0.0))
	assert.Equal(t, ComplexitySimple, Category(0.3))
	assert.Equal(t, ComplexityModerate, Category(0.31))
	assert.Equal(t, ComplexityModerate, Category(0.7))
	assert.Equal(t, ComplexityComplex, Category(0.71))
	assert.Equal(t, ComplexityComplex, Category(1.0))
}
