package router

import (
	"context"
	"strings"
	"time"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
	"nova-chat-go/pkg/log"
)

// fallbackText 是所有候选后端都失败时的兜底应答。
// 对话必须始终得到回复：失败被吸收，不对聊天用户暴露为错误。
const fallbackText = "I'm having a little trouble reaching my full brain right now, " +
	"but I'm still here with you. Mind saying that again in a moment?"

// Result 是一次编排的最终产出。
type Result struct {
	Text          string
	Source        string
	ElapsedMs     int64
	ExtractedName string
	Decision      model.RouteDecision
}

// Orchestrator 驱动路由决策到实际应答的回退循环。
// 状态机：ROUTING → TRYING(candidate) → {SUCCEEDED, TRYING(next)} → SUCCEEDED | EXHAUSTED。
// 候选按顺序逐个尝试（不并发竞速），每个候选有独立的超时预算；
// 这里没有跨请求的熔断状态——每次请求独立探测、独立回退。
type Orchestrator struct {
	backends map[string]Backend
	cfg      config.RouterConfig
}

// New 创建编排器。local/web/tmpl 分别是三个具体后端的适配器。
func New(local, web, tmpl Backend, cfg config.RouterConfig) *Orchestrator {
	return &Orchestrator{
		backends: map[string]Backend{
			local.Name(): local,
			web.Name():   web,
			tmpl.Name():  tmpl,
		},
		cfg: cfg,
	}
}

// Respond 执行一次完整的编排：选路 → 依序尝试候选 → 成功或兜底。
// 无论后端如何失败，本方法总是返回一个可用的应答。
func (o *Orchestrator) Respond(ctx context.Context, req Request, snapshot model.CapabilitySnapshot) Result {
	start := time.Now()

	// ROUTING
	route := SelectRoute(req.Message, req.Mode, snapshot, o.cfg)
	req.Training = req.Training || route.Training
	candidates := withFallbacks(route.Primary)

	decision := model.RouteDecision{
		Backend:    route.Primary,
		Reason:     route.Reason,
		Complexity: route.Complexity,
		Snapshot:   snapshot,
		Timestamp:  start,
	}

	// TRYING(candidate)
	for _, name := range candidates {
		backend, ok := o.backends[name]
		if !ok {
			continue
		}

		cctx, cancel := context.WithTimeout(ctx, backend.Timeout())
		reply, err := backend.Generate(cctx, req)
		cancel()

		if err != nil {
			// 失败原因仅用于观测，随后移动到下一个候选
			log.Warnf("[Orchestrator] 后端 %s 失败，尝试下一个候选: %v", name, err)
			continue
		}
		if strings.TrimSpace(reply.Text) == "" {
			log.Warnf("[Orchestrator] 后端 %s 返回空应答，尝试下一个候选", name)
			continue
		}

		// SUCCEEDED
		elapsed := time.Since(start).Milliseconds()
		decision.Backend = name
		decision.ElapsedMs = elapsed
		decision.Success = true
		return Result{
			Text:          reply.Text,
			Source:        name,
			ElapsedMs:     elapsed,
			ExtractedName: reply.ExtractedName,
			Decision:      decision,
		}
	}

	// EXHAUSTED：返回静态兜底文本，对调用方依然是成功
	elapsed := time.Since(start).Milliseconds()
	log.Warnf("[Orchestrator] 所有候选后端均失败，返回兜底应答, reason=%s", route.Reason)
	decision.Backend = model.BackendFallback
	decision.ElapsedMs = elapsed
	decision.Success = true
	return Result{
		Text:      fallbackText,
		Source:    model.BackendFallback,
		ElapsedMs: elapsed,
		Decision:  decision,
	}
}

// withFallbacks 在首选后端之后固定追加 web 与 template 两级回退，去重保序。
func withFallbacks(primary string) []string {
	candidates := []string{primary, model.BackendWeb, model.BackendTemplate}
	seen := make(map[string]bool, len(candidates))
	ordered := candidates[:0]
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		ordered = append(ordered, c)
	}
	return ordered
}
