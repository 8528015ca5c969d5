package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/matcher"
	"nova-chat-go/internal/model"
	"nova-chat-go/pkg/modelsrv"
)

// 适配器边界的错误分类。编排器只记录原因并尝试下一个候选，
// 这些错误绝不会穿透到聊天调用方。
var (
	ErrConnectivity      = errors.New("backend unreachable")
	ErrTimeout           = errors.New("backend timed out")
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrEmptyReply        = errors.New("backend returned empty reply")
	ErrNoMatch           = errors.New("no template matched")
)

// Request 是一次后端生成调用的输入。
type Request struct {
	Message        string
	Mode           string
	JournalContext string
	History        []model.ChatMessage
	DisplayName    string
	// Training 由路由级联置位，指示 web 生成器走训练应答路径。
	Training bool
}

// Reply 是后端适配器的产出。
// ExtractedName 仅由模板后端在命中 name_collection 模板时填充。
type Reply struct {
	Text          string
	ExtractedName string
}

// Backend 是响应后端的统一接口。
type Backend interface {
	Name() string
	// Timeout 是编排器为该后端设置的单次调用预算。
	Timeout() time.Duration
	Generate(ctx context.Context, req Request) (Reply, error)
}

// ---- 本地推理适配器 ----

const localSystemPrompt = "You are Nova, a warm personal companion. " +
	"Keep replies conversational and grounded in what the user actually said. " +
	"Avoid lists unless asked."

type localBackend struct {
	client modelsrv.Client
	cfg    config.ModelServerConfig
}

// NewLocalBackend 创建本地推理后端适配器。
func NewLocalBackend(client modelsrv.Client, cfg config.ModelServerConfig) Backend {
	return &localBackend{client: client, cfg: cfg}
}

func (b *localBackend) Name() string { return model.BackendLocal }

func (b *localBackend) Timeout() time.Duration { return b.cfg.GenerateTimeout() }

// Generate 组装 system + 历史 + 用户消息并调用本地聊天接口。
func (b *localBackend) Generate(ctx context.Context, req Request) (Reply, error) {
	system := localSystemPrompt
	if req.DisplayName != "" {
		system += " The user's name is " + req.DisplayName + "."
	}
	if req.Mode == model.ModeJournal && req.JournalContext != "" {
		system += "\n\nThe user shared a journal excerpt for context:\n" + req.JournalContext
	}

	messages := make([]model.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, model.ChatMessage{Role: "system", Content: system})
	messages = append(messages, req.History...)
	messages = append(messages, model.ChatMessage{Role: model.RoleUser, Content: req.Message})

	text, err := b.client.Chat(ctx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Reply{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return Reply{}, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyReply
	}
	return Reply{Text: text}, nil
}

// ---- 模板适配器 ----

type templateBackend struct {
	matcher matcher.Matcher
}

// NewTemplateBackend 创建模板后端适配器。
func NewTemplateBackend(m matcher.Matcher) Backend {
	return &templateBackend{matcher: m}
}

func (b *templateBackend) Name() string { return model.BackendTemplate }

func (b *templateBackend) Timeout() time.Duration { return 2 * time.Second }

// Generate 将消息交给模板匹配器，未命中即失败，让编排器继续回退。
func (b *templateBackend) Generate(ctx context.Context, req Request) (Reply, error) {
	result, err := b.matcher.Match(ctx, req.Message)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if result == nil {
		return Reply{}, ErrNoMatch
	}
	return Reply{
		Text:          result.Template.ResponseText,
		ExtractedName: result.ExtractedName,
	}, nil
}
