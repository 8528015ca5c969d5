package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
)

var testRouterCfg = config.RouterConfig{}

func reachableSnapshot(load int) model.CapabilitySnapshot {
	return model.CapabilitySnapshot{Reachable: true, Load: load, LastSeenSec: 5}
}

func unreachableSnapshot() model.CapabilitySnapshot {
	return model.CapabilitySnapshot{Reachable: false, Load: 100, Reason: "heartbeat_stale"}
}

func TestSelectRouteFullPower(t *testing.T) {
	route := SelectRoute("hi", model.ModeFullPower, reachableSnapshot(95), testRouterCfg)
	assert.Equal(t, model.BackendLocal, route.Primary)
	assert.Equal(t, ReasonModeFullPower, route.Reason)

	// full-power 但本地不可达时被规则 2 接管
	route = SelectRoute("hi", model.ModeFullPower, unreachableSnapshot(), testRouterCfg)
	assert.Equal(t, model.BackendWeb, route.Primary)
	assert.Equal(t, ReasonLocalUnreachable, route.Reason)
}

func TestSelectRouteChillAlwaysWeb(t *testing.T) {
	// chill 优先级高于复杂度和训练规则，不管快照如何
	complexTraining := "analyze my workout plan and debug the tracking code please"
	for _, snap := range []model.CapabilitySnapshot{reachableSnapshot(10), unreachableSnapshot()} {
		route := SelectRoute(complexTraining, model.ModeChill, snap, testRouterCfg)
		assert.Equal(t, model.BackendWeb, route.Primary)
		assert.Equal(t, ReasonModeChill, route.Reason)
	}
}

func TestSelectRouteHighComplexity(t *testing.T) {
	// technical(0.4) + programming(0.5) = 0.9 > 0.7
	message := "analyze this algorithm and debug the code"

	route := SelectRoute(message, model.ModeAuto, reachableSnapshot(20), testRouterCfg)
	assert.Equal(t, model.BackendLocal, route.Primary)
	assert.Equal(t, ReasonHighComplexity, route.Reason)
	assert.InDelta(t, 0.9, route.Complexity, 1e-9)

	// 负载达到上限时不再命中复杂度规则，兜底到 web
	route = SelectRoute(message, model.ModeAuto, reachableSnapshot(70), testRouterCfg)
	assert.Equal(t, model.BackendWeb, route.Primary)
	assert.Equal(t, ReasonDefaultWeb, route.Reason)
}

func TestSelectRouteTraining(t *testing.T) {
	message := "what workout should I do today"

	route := SelectRoute(message, model.ModeAuto, reachableSnapshot(90), testRouterCfg)
	assert.Equal(t, model.BackendLocal, route.Primary)
	assert.Equal(t, ReasonTrainingQuery, route.Reason)
	assert.True(t, route.Training)

	route = SelectRoute(message, model.ModeAuto, unreachableSnapshot(), testRouterCfg)
	assert.Equal(t, model.BackendWeb, route.Primary)
	assert.Equal(t, ReasonLocalUnreachable, route.Reason)
}

func TestSelectRouteDefault(t *testing.T) {
	route := SelectRoute("how are you", model.ModeAuto, reachableSnapshot(30), testRouterCfg)
	assert.Equal(t, model.BackendWeb, route.Primary)
	assert.Equal(t, ReasonDefaultWeb, route.Reason)
	assert.False(t, route.Training)
}

func TestSelectRouteDeterministic(t *testing.T) {
	snap := reachableSnapshot(42)
	first := SelectRoute("plot a chart of my gym sets", model.ModeAuto, snap, testRouterCfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, SelectRoute("plot a chart of my gym sets", model.ModeAuto, snap, testRouterCfg))
	}
}
