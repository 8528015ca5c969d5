package router

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-chat-go/internal/model"
)

func TestWebGenerateNeverEmpty(t *testing.T) {
	b := NewWebBackend()
	messages := []string{
		"hello there",
		"thanks a lot",
		"goodbye for now",
		"what is the capital of France?",
		"I had a rough day at the office",
		"",
	}
	for _, msg := range messages {
		reply, err := b.Generate(context.Background(), Request{Message: msg, Mode: model.ModeAuto})
		require.NoError(t, err, "message %q", msg)
		assert.NotEmpty(t, strings.TrimSpace(reply.Text), "message %q", msg)
	}
}

func TestWebGenerateTrainingPath(t *testing.T) {
	b := NewWebBackend()

	// 路由置位的训练标记优先于消息内容
	reply, err := b.Generate(context.Background(), Request{Message: "how do I get better", Training: true})
	require.NoError(t, err)
	assert.Contains(t, trainingReplies, reply.Text)

	// 消息自身命中训练词表时同样走训练路径
	reply, err = b.Generate(context.Background(), Request{Message: "leg day at the gym was brutal"})
	require.NoError(t, err)
	assert.Contains(t, trainingReplies, reply.Text)
}

func TestWebGenerateJournalMode(t *testing.T) {
	b := NewWebBackend()
	reply, err := b.Generate(context.Background(), Request{
		Message:        "here is my entry",
		Mode:           model.ModeJournal,
		JournalContext: "Today I finally finished the garden fence.",
	})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Today I finally finished the garden fence.")
}

func TestWebGenerateQuestionEchoesTopic(t *testing.T) {
	b := NewWebBackend()
	reply, err := b.Generate(context.Background(), Request{Message: "why do sunflowers follow the sun?"})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "sunflowers")
}

func TestTopicOf(t *testing.T) {
	assert.Equal(t, "sunflowers", topicOf("why do sunflowers follow the sun?"))
	assert.Equal(t, "that", topicOf("so it is"))
	assert.Equal(t, "that", topicOf(""))
	// 标点从候选词上剥离
	assert.Equal(t, "deadline", topicOf("the deadline, again"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("  short  ", 80))
	long := strings.Repeat("a", 100)
	got := excerpt(long, 80)
	assert.Len(t, []rune(got), 81)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestExcerptKeepsRuneBoundary(t *testing.T) {
	// 截断点落在多字节字符中间时回退，不产生非法 UTF-8
	got := excerpt(strings.Repeat("日", 40), 80)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len(got), 80+len("…"))
}

func TestWebGenerateJournalMultibyteContextIsValidUTF8(t *testing.T) {
	b := NewWebBackend()
	reply, err := b.Generate(context.Background(), Request{
		Message:        "here is my entry",
		Mode:           model.ModeJournal,
		JournalContext: strings.Repeat("日", 40),
	})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(reply.Text))
}

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hi", true},
		{"hi there", true},
		{"hello, nova", true},
		{"hey!", true},
		{"good morning", true},
		{"history of rome", false},
		{"highway traffic was bad", false},
		{"heyday of jazz", false},
		{"helloween is a band", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isGreeting(tt.input), tt.input)
	}
}
