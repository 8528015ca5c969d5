package router

import (
	"context"
	"time"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
	"nova-chat-go/pkg/log"
	"nova-chat-go/pkg/modelsrv"
)

// 探测失败的原因码。
const (
	ProbeReasonStatusError     = "status_error"
	ProbeReasonHeartbeatStale  = "heartbeat_stale"
	ProbeReasonHandshakeFailed = "handshake_failed"
)

// Prober 判断本地推理后端是否可达及其当前负载。
// Probe 在短超时内完成且从不失败：任何网络或解析问题都表现为
// reachable=false 的快照，并带上原因码。
type Prober interface {
	Probe(ctx context.Context) model.CapabilitySnapshot
}

type capabilityProber struct {
	client modelsrv.Client
	cfg    config.ModelServerConfig
}

// NewProber 创建一个新的 Prober。
func NewProber(client modelsrv.Client, cfg config.ModelServerConfig) Prober {
	return &capabilityProber{client: client, cfg: cfg}
}

// Probe 拉取一次心跳并与推理端点握手，产出本次请求使用的能力快照。
// 快照不跨请求缓存：每次编排调用都重新探测。
func (p *capabilityProber) Probe(ctx context.Context) model.CapabilitySnapshot {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout())
	defer cancel()

	status, err := p.client.Status(ctx)
	if err != nil {
		log.Debugf("[Prober] 状态端点不可用: %v", err)
		return unreachable(ProbeReasonStatusError)
	}

	age := time.Now().Unix() - status.LastHeartbeat
	if age < 0 {
		age = 0
	}
	if time.Duration(age)*time.Second > p.cfg.HeartbeatMaxAge() {
		return unreachable(ProbeReasonHeartbeatStale)
	}

	if err := p.client.Handshake(ctx); err != nil {
		log.Debugf("[Prober] 推理端点握手失败: %v", err)
		return unreachable(ProbeReasonHandshakeFailed)
	}

	return model.CapabilitySnapshot{
		Reachable:   true,
		Load:        loadFromMemory(status.TotalMemory, status.FreeMemory),
		LastSeenSec: age,
		Models:      status.Models,
	}
}

// loadFromMemory 由心跳上报的内存推导负载百分比。
// 总内存缺失或为零时按饱和(100)处理，让路由远离该后端。
func loadFromMemory(total, free uint64) int {
	if total == 0 {
		return 100
	}
	if free > total {
		free = total
	}
	return int((total - free) * 100 / total)
}

func unreachable(reason string) model.CapabilitySnapshot {
	// 不可达时负载与模型列表无意义，置零值即可
	return model.CapabilitySnapshot{Reachable: false, Reason: reason}
}
