package service

import (
	"context"
	"math/rand"
	"strings"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
	"nova-chat-go/pkg/log"
)

// 应答草稿中的姓名占位符。
const namePlaceholder = "{name}"

// 姓名请求只在对话第 2 到第 4 条消息之间追加，绝不在第一轮。
const (
	nameRequestMinCount = 2
	nameRequestMaxCount = 4
)

const nameRequestText = "By the way, I don't think I caught your name — what should I call you?"

// followUpQuestions 是浅应答的补充追问，随机取一条，单次应答至多追加一次。
var followUpQuestions = []string{
	"How is that project coming along, by the way?",
	"What part of it are you most looking forward to?",
	"Is there anything about it you've been putting off?",
	"What would make this week feel like a win for you?",
}

// shallowKeywords 命中其一即认为草稿值得追问。
var shallowKeywords = []string{"project", "work", "study", "job", "school", "plan"}

// PersonalizeService 对草稿应答做轻量个性化改写。
type PersonalizeService interface {
	// Personalize 依次执行姓名替换、追问注入与姓名请求，每步均可由配置关闭。
	Personalize(ctx context.Context, draft string, conv *model.Conversation) string
}

type personalizeService struct {
	convService ConversationService
	cfg         config.PersonalizeConfig
}

// NewPersonalizeService 创建一个新的 PersonalizeService。
func NewPersonalizeService(convService ConversationService, cfg config.PersonalizeConfig) PersonalizeService {
	return &personalizeService{convService: convService, cfg: cfg}
}

// Personalize 把草稿加工成最终应答。
func (s *personalizeService) Personalize(ctx context.Context, draft string, conv *model.Conversation) string {
	name := s.convService.GetDisplayName(ctx, conv)
	text := substituteName(draft, name, s.cfg.NameSubstitution)

	if s.cfg.FollowUp && isShallow(text) {
		text = appendSentence(text, followUpQuestions[rand.Intn(len(followUpQuestions))])
	}

	if s.shouldRequestName(name, conv) {
		text = appendSentence(text, nameRequestText)
		if err := s.convService.MarkNamePrompted(ctx, conv); err != nil {
			log.Warnf("[Personalize] 标记姓名请求失败, conversation=%s: %v", conv.ID, err)
		}
	}

	return text
}

// substituteName 替换姓名占位符。未知姓名（或替换被关闭）时占位符
// 退化为中性称呼，绝不让占位符泄漏给用户。
func substituteName(draft, name string, enabled bool) string {
	if !strings.Contains(draft, namePlaceholder) {
		return draft
	}
	if enabled && name != "" {
		return strings.ReplaceAll(draft, namePlaceholder, name)
	}
	return strings.ReplaceAll(draft, namePlaceholder, "there")
}

// shouldRequestName 判断是否追加姓名请求：
// 开关开启、姓名未知、消息数在窗口内、且本对话从未请求过。
func (s *personalizeService) shouldRequestName(name string, conv *model.Conversation) bool {
	if !s.cfg.NameRequest || name != "" || conv.NamePrompted {
		return false
	}
	return conv.MessageCount >= nameRequestMinCount && conv.MessageCount <= nameRequestMaxCount
}

// isShallow 用简单关键词判断草稿是否值得追问。
func isShallow(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range shallowKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func appendSentence(text, sentence string) string {
	return strings.TrimRight(text, " ") + " " + sentence
}
