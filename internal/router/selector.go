package router

import (
	"strings"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
)

// 路由决策的原因码，写入 RouteDecision 供观测使用。
const (
	ReasonModeFullPower    = "mode_full_power"
	ReasonModeChill        = "mode_chill"
	ReasonLocalUnreachable = "local_unreachable"
	ReasonHighComplexity   = "high_complexity"
	ReasonTrainingQuery    = "training_query"
	ReasonTrainingQueryWeb = "training_query_web"
	ReasonDefaultWeb       = "default_web"
)

// Route 是路由级联的产出：首选后端与决策依据。
type Route struct {
	Primary    string
	Reason     string
	Complexity float64
	// Training 为 true 时 web 生成器走专门的训练应答路径。
	Training bool
}

// trainingWords 是"训练相关"词表。
var trainingWords = []string{
	"workout", "training", "train", "exercise", "fitness",
	"gym", "reps", "sets", "cardio", "stretch", "muscle",
}

// SelectRoute 是纯决策函数：按固定顺序评估级联规则，首个命中的规则
// 给出唯一的首选后端。相同的 (message, requestedMode, snapshot) 输入
// 必然产出相同的结果；平局由规则顺序决定，不做任何加权优化。
//
// 注意：规则之间存在有意保留的重叠（训练类消息可能先被复杂度规则
// 拦截），这里严格保持既定的规则顺序，不要静默调整。
func SelectRoute(message, requestedMode string, snapshot model.CapabilitySnapshot, cfg config.RouterConfig) Route {
	score := Score(message)

	// 规则 1: full-power 模式且本地后端可达
	if requestedMode == model.ModeFullPower && snapshot.Reachable {
		return Route{Primary: model.BackendLocal, Reason: ReasonModeFullPower, Complexity: score}
	}

	// 规则 2: chill 模式或本地后端不可达
	if requestedMode == model.ModeChill {
		return Route{Primary: model.BackendWeb, Reason: ReasonModeChill, Complexity: score}
	}
	if !snapshot.Reachable {
		return Route{Primary: model.BackendWeb, Reason: ReasonLocalUnreachable, Complexity: score}
	}

	// 规则 3: 高复杂度消息，且本地可达、负载未超上限
	if score > cfg.Threshold() && snapshot.Reachable && snapshot.Load < cfg.Ceiling() {
		return Route{Primary: model.BackendLocal, Reason: ReasonHighComplexity, Complexity: score}
	}

	// 规则 4: 训练相关消息
	if isTrainingQuery(message) {
		if snapshot.Reachable {
			return Route{Primary: model.BackendLocal, Reason: ReasonTrainingQuery, Complexity: score, Training: true}
		}
		return Route{Primary: model.BackendWeb, Reason: ReasonTrainingQueryWeb, Complexity: score, Training: true}
	}

	// 规则 5: 兜底走 web 生成器
	return Route{Primary: model.BackendWeb, Reason: ReasonDefaultWeb, Complexity: score}
}

// isTrainingQuery 判断消息是否命中训练相关词表。
func isTrainingQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range trainingWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
