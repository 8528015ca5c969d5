package router

import (
	"context"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"nova-chat-go/internal/model"
)

// webBackend 是规则驱动的文本生成器：不依赖任何模型，
// 按消息特征挑选一类上下文化应答，永远能给出非空文本。
type webBackend struct{}

// NewWebBackend 创建 web 生成器后端。
func NewWebBackend() Backend {
	return &webBackend{}
}

func (b *webBackend) Name() string { return model.BackendWeb }

func (b *webBackend) Timeout() time.Duration { return 2 * time.Second }

var (
	greetingReplies = []string{
		"Hey {name}! Good to see you. What's on your mind today?",
		"Hi {name}! How has your day been treating you?",
		"Hello {name}! I'm all ears.",
	}
	trainingReplies = []string{
		"Nice, let's talk training. Consistency beats intensity: what does your current week look like?",
		"Good question. For most goals, two or three focused sessions a week move the needle. What are you working toward?",
		"Recovery is half the workout. How have you been sleeping between sessions?",
	}
	gratitudeReplies = []string{
		"Anytime, {name}. That's what I'm here for.",
		"You're very welcome. Anything else on your mind?",
	}
	farewellReplies = []string{
		"Take care, {name}. I'll be here whenever you want to pick this back up.",
		"Talk soon! Rest well.",
	}
	journalReplies = []string{
		"Thanks for sharing that entry. The part about \"%s\" stood out to me. How are you feeling about it now?",
		"I read your note. \"%s\" sounds like it's been sitting with you. Want to unpack it a little?",
	}
	questionReplies = []string{
		"That's a fair question about %s. I don't have a confident answer off-hand, but tell me more and we can reason through it together.",
		"Hmm, %s is worth thinking about properly. What prompted the question?",
	}
	defaultReplies = []string{
		"I hear you on %s. Tell me a bit more?",
		"Got it. %s has clearly been on your mind. What part matters most to you right now?",
		"That makes sense. How long has %s been going on?",
	}
)

// Generate 按规则挑选应答。应答中可以携带 {name} 占位符，
// 由后续的个性化步骤替换。
func (b *webBackend) Generate(ctx context.Context, req Request) (Reply, error) {
	lower := strings.ToLower(strings.TrimSpace(req.Message))

	// 训练路径：由路由级联置位，或消息本身命中训练词表
	if req.Training || isTrainingQuery(req.Message) {
		return Reply{Text: pick(trainingReplies)}, nil
	}

	// journal 模式带着日记摘录时，生成回应式文本
	if req.Mode == model.ModeJournal && req.JournalContext != "" {
		return Reply{Text: sprintfReply(journalReplies, excerpt(req.JournalContext, 80))}, nil
	}

	switch {
	case isGreeting(lower):
		return Reply{Text: pick(greetingReplies)}, nil
	case isGratitude(lower):
		return Reply{Text: pick(gratitudeReplies)}, nil
	case isFarewell(lower):
		return Reply{Text: pick(farewellReplies)}, nil
	case strings.HasSuffix(lower, "?") || isQuestionLead(lower):
		return Reply{Text: sprintfReply(questionReplies, topicOf(req.Message))}, nil
	}

	return Reply{Text: sprintfReply(defaultReplies, topicOf(req.Message))}, nil
}

// isGreeting 按完整的开头词判断问候语，避免 "hi" 误命中 "history" 这类前缀。
func isGreeting(lower string) bool {
	for _, w := range []string{"hello", "hi", "hey", "good morning", "good evening"} {
		if lower == w || strings.HasPrefix(lower, w+" ") ||
			strings.HasPrefix(lower, w+",") || strings.HasPrefix(lower, w+"!") {
			return true
		}
	}
	return false
}

func isGratitude(lower string) bool {
	return strings.Contains(lower, "thank") || strings.Contains(lower, "appreciate")
}

func isFarewell(lower string) bool {
	for _, w := range []string{"bye", "goodbye", "good night", "see you"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func isQuestionLead(lower string) bool {
	for _, w := range []string{"what", "why", "how", "when", "where", "who", "can you", "could you", "do you"} {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

// topicOf 取消息中最长的实义词作为话题回指；全是短词时退化为 "that"。
func topicOf(message string) string {
	topic := ""
	for _, w := range strings.Fields(message) {
		w = strings.Trim(w, ".,!?;:\"'")
		if len(w) > len(topic) && len(w) > 4 {
			topic = w
		}
	}
	if topic == "" {
		return "that"
	}
	return strings.ToLower(topic)
}

// excerpt 截取日记摘录的开头片段用于回指，截断点回退到 rune 边界。
func excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

func pick(replies []string) string {
	return replies[rand.Intn(len(replies))]
}

func sprintfReply(replies []string, arg string) string {
	tpl := pick(replies)
	return strings.Replace(tpl, "%s", arg, 1)
}
