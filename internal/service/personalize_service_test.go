package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
	"nova-chat-go/internal/repository"
)

func allOnPersonalizeCfg() config.PersonalizeConfig {
	return config.PersonalizeConfig{NameSubstitution: true, FollowUp: true, NameRequest: true}
}

func newPersonalizeFixture(t *testing.T, cfg config.PersonalizeConfig) (PersonalizeService, ConversationService, *model.Conversation) {
	t.Helper()
	convSvc := newTestConversationService(newMemConvRepo(), newMemPrefRepo())
	conv, err := convSvc.GetOrCreate(context.Background(), "session-1")
	require.NoError(t, err)
	return NewPersonalizeService(convSvc, cfg), convSvc, conv
}

func TestPersonalizeSubstitutesKnownName(t *testing.T) {
	svc, convSvc, conv := newPersonalizeFixture(t, allOnPersonalizeCfg())
	ctx := context.Background()
	require.NoError(t, convSvc.StoreDisplayName(ctx, conv, "Alex"))

	got := svc.Personalize(ctx, "Hey {name}! Good to see you.", conv)
	assert.Equal(t, "Hey Alex! Good to see you.", got)
}

func TestPersonalizeUnknownNameFallsBackToNeutral(t *testing.T) {
	svc, _, conv := newPersonalizeFixture(t, allOnPersonalizeCfg())

	got := svc.Personalize(context.Background(), "Hey {name}! Good to see you.", conv)
	// 占位符绝不泄漏给用户
	assert.NotContains(t, got, "{name}")
	assert.Contains(t, got, "Hey there!")
}

func TestPersonalizeSubstitutionDisabled(t *testing.T) {
	cfg := allOnPersonalizeCfg()
	cfg.NameSubstitution = false
	svc, convSvc, conv := newPersonalizeFixture(t, cfg)
	ctx := context.Background()
	require.NoError(t, convSvc.StoreDisplayName(ctx, conv, "Alex"))

	got := svc.Personalize(ctx, "Hey {name}!", conv)
	assert.NotContains(t, got, "{name}")
	assert.NotContains(t, got, "Alex")
}

func TestPersonalizeAppendsFollowUpOnShallowDraft(t *testing.T) {
	svc, _, conv := newPersonalizeFixture(t, allOnPersonalizeCfg())

	draft := "Sounds like the project kept you busy."
	got := svc.Personalize(context.Background(), draft, conv)
	assert.True(t, strings.HasPrefix(got, draft))
	assert.Greater(t, len(got), len(draft))

	// 非浅应答不追问
	deep := "That sounds like a lot to carry. I'm glad you told me."
	assert.Equal(t, deep, svc.Personalize(context.Background(), deep, conv))
}

func TestPersonalizeFollowUpDisabled(t *testing.T) {
	cfg := allOnPersonalizeCfg()
	cfg.FollowUp = false
	svc, _, conv := newPersonalizeFixture(t, cfg)

	draft := "Sounds like the project kept you busy."
	assert.Equal(t, draft, svc.Personalize(context.Background(), draft, conv))
}

func TestPersonalizeNameRequestWindow(t *testing.T) {
	tests := []struct {
		name         string
		messageCount int
		want         bool
	}{
		{"never on first message", 1, false},
		{"window start", 2, true},
		{"window middle", 3, true},
		{"window end", 4, true},
		{"after window", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, conv := newPersonalizeFixture(t, allOnPersonalizeCfg())
			conv.MessageCount = tt.messageCount

			got := svc.Personalize(context.Background(), "Okay.", conv)
			assert.Equal(t, tt.want, strings.Contains(got, nameRequestText))
		})
	}
}

func TestPersonalizeNameRequestAtMostOncePerConversation(t *testing.T) {
	svc, _, conv := newPersonalizeFixture(t, allOnPersonalizeCfg())

	requests := 0
	for count := 1; count <= 10; count++ {
		conv.MessageCount = count
		got := svc.Personalize(context.Background(), "Okay.", conv)
		if strings.Contains(got, nameRequestText) {
			requests++
		}
	}
	assert.Equal(t, 1, requests)
	assert.True(t, conv.NamePrompted)
}

func TestPersonalizeNoNameRequestWhenNameKnown(t *testing.T) {
	svc, convSvc, conv := newPersonalizeFixture(t, allOnPersonalizeCfg())
	ctx := context.Background()
	require.NoError(t, convSvc.StoreDisplayName(ctx, conv, "Alex"))
	conv.MessageCount = 3

	got := svc.Personalize(ctx, "Okay.", conv)
	assert.NotContains(t, got, nameRequestText)
}

func TestPersonalizeNameFromSessionPreference(t *testing.T) {
	// 显示名可以来自会话偏好：同一用户跨对话保留称呼
	convRepo := newMemConvRepo()
	prefRepo := newMemPrefRepo()
	prefRepo.prefs["session-1"] = repository.UserPreference{DisplayName: "Sam"}
	convSvc := newTestConversationService(convRepo, prefRepo)
	conv, err := convSvc.GetOrCreate(context.Background(), "session-1")
	require.NoError(t, err)

	svc := NewPersonalizeService(convSvc, allOnPersonalizeCfg())
	got := svc.Personalize(context.Background(), "Hey {name}!", conv)
	assert.Equal(t, "Hey Sam!", got)
}
