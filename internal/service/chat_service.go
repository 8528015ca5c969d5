package service

import (
	"context"
	"time"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
	"nova-chat-go/internal/router"
	"nova-chat-go/pkg/es"
	"nova-chat-go/pkg/kafka"
	"nova-chat-go/pkg/log"
)

// ChatRequest 是一次入站聊天调用（已通过结构校验）。
type ChatRequest struct {
	Message        string
	SessionID      string
	Mode           string
	JournalContext string
}

// ChatService 驱动完整的应答链路：
// 对话装载 → 能力探测 → 编排 → 个性化 → 持久化。
type ChatService interface {
	Respond(ctx context.Context, req ChatRequest) (*model.ChatResult, error)
}

type chatService struct {
	convService  ConversationService
	personalize  PersonalizeService
	orchestrator *router.Orchestrator
	prober       router.Prober
	routerCfg    config.RouterConfig
	esIndex      string
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	convService ConversationService,
	personalize PersonalizeService,
	orchestrator *router.Orchestrator,
	prober router.Prober,
	routerCfg config.RouterConfig,
	esIndex string,
) ChatService {
	return &chatService{
		convService:  convService,
		personalize:  personalize,
		orchestrator: orchestrator,
		prober:       prober,
		routerCfg:    routerCfg,
		esIndex:      esIndex,
	}
}

// Respond 处理一条用户消息并返回最终应答。
// 后端失败在编排器内部被吸收；这里只有对话装载失败才返回错误。
func (s *chatService) Respond(ctx context.Context, req ChatRequest) (*model.ChatResult, error) {
	start := time.Now()
	mode := req.Mode
	if mode == "" {
		mode = model.ModeAuto
	}

	// 1. 装载或创建对话
	conv, err := s.convService.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// 2. 读取最近历史（失败时降级为空历史继续）
	history, err := s.convService.RecentHistory(ctx, conv.ID, s.routerCfg.History())
	if err != nil {
		log.Errorf("[Chat] 加载对话历史失败, conversation=%s: %v", conv.ID, err)
		history = nil
	}

	// 3. 持久化用户消息。写失败不阻断应答链路。
	userMeta := model.MessageMeta{
		Timestamp:      time.Now(),
		Mode:           mode,
		JournalExcerpt: req.JournalContext,
	}
	if err := s.convService.AppendMessage(ctx, conv.ID, model.RoleUser, req.Message, nil, userMeta); err != nil {
		log.Errorf("[Chat] 持久化用户消息失败, conversation=%s: %v", conv.ID, err)
	} else {
		conv.MessageCount++
	}

	// 4. 探测本地后端能力（每次请求独立探测）
	snapshot := s.prober.Probe(ctx)

	// 5. 编排应答
	result := s.orchestrator.Respond(ctx, router.Request{
		Message:        req.Message,
		Mode:           mode,
		JournalContext: req.JournalContext,
		History:        toChatMessages(history),
		DisplayName:    s.convService.GetDisplayName(ctx, conv),
	}, snapshot)

	// 6. 模板命中时可能提取到了用户姓名
	if result.ExtractedName != "" {
		if err := s.convService.StoreDisplayName(ctx, conv, result.ExtractedName); err != nil {
			log.Warnf("[Chat] 保存显示名失败, conversation=%s: %v", conv.ID, err)
		}
	}

	// 7. 个性化改写
	finalText := s.personalize.Personalize(ctx, result.Text, conv)

	// 8. 持久化助手消息。失败只记录——用户必须看到应答，
	//    即使这一轮没能落库（at-most-once logging, always respond）。
	elapsed := time.Since(start).Milliseconds()
	assistantMeta := model.MessageMeta{
		Timestamp: time.Now(),
		Mode:      mode,
		Source:    result.Source,
	}
	if err := s.convService.AppendMessage(ctx, conv.ID, model.RoleAssistant, finalText, &elapsed, assistantMeta); err != nil {
		log.Errorf("[Chat] 持久化助手消息失败, conversation=%s: %v", conv.ID, err)
	} else {
		conv.MessageCount++
	}

	// 9. 观测与索引均为尽力而为，不阻塞响应
	decision := result.Decision
	decision.SessionID = req.SessionID
	decision.ConversationID = conv.ID
	s.publishDecision(decision)
	s.indexTurn(req.SessionID, conv.ID, mode, req.Message, finalText)

	return &model.ChatResult{
		Response:       finalText,
		Mode:           mode,
		SourceUsed:     result.Source,
		ProcessingTime: elapsed,
		ConversationID: conv.ID,
	}, nil
}

// publishDecision 异步发布路由决策事件到 Kafka。
func (s *chatService) publishDecision(decision model.RouteDecision) {
	if !kafka.Enabled() {
		return
	}
	go func() {
		if err := kafka.ProduceRouteDecision(decision); err != nil {
			log.Warnf("[Chat] 发布路由决策事件失败: %v", err)
		}
	}()
}

// indexTurn 异步把这一轮的两条消息写入 Elasticsearch 供检索。
func (s *chatService) indexTurn(sessionID, conversationID, mode, question, answer string) {
	if es.ESClient == nil || s.esIndex == "" {
		return
	}
	docs := []model.EsMessageDoc{
		{SessionID: sessionID, ConversationID: conversationID, Role: model.RoleUser, Content: question, Mode: mode},
		{SessionID: sessionID, ConversationID: conversationID, Role: model.RoleAssistant, Content: answer, Mode: mode},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		now := time.Now().Format("2006-01-02 15:04:05")
		for _, doc := range docs {
			doc.CreatedAt = now
			if err := es.IndexMessage(ctx, s.esIndex, doc); err != nil {
				log.Warnf("[Chat] 消息索引到 Elasticsearch 失败: %v", err)
			}
		}
	}()
}

// toChatMessages 把持久化消息转换为后端可用的角色消息。
func toChatMessages(messages []model.Message) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, model.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
