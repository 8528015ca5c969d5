package matcher

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-chat-go/internal/model"
)

// fakeTemplateRepo 是 TemplateRepository 的内存实现，
// FindActive 遵守仓储契约的 (priority DESC, usage_count ASC) 排序。
type fakeTemplateRepo struct {
	templates  []model.Template
	findErr    error
	findCalls  int
	usageCalls map[uint]int
}

func newFakeTemplateRepo(templates ...model.Template) *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: templates, usageCalls: make(map[uint]int)}
}

func (f *fakeTemplateRepo) FindActive() ([]model.Template, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var active []model.Template
	for _, t := range f.templates {
		if t.Active {
			active = append(active, t)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].UsageCount < active[j].UsageCount
	})
	return active, nil
}

func (f *fakeTemplateRepo) IncrementUsage(templateID uint) error {
	f.usageCalls[templateID]++
	return nil
}

func TestMatchHighestPriorityWins(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{ID: 1, Pattern: `hello`, ResponseText: "low", Priority: 1, Active: true},
		model.Template{ID: 2, Pattern: `hello`, ResponseText: "high", Priority: 10, Active: true},
	)
	m := New(repo, time.Minute)

	result, err := m.Match(context.Background(), "Hello there")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(2), result.Template.ID)
	// 命中模板的使用计数恰好递增一次
	assert.Equal(t, 1, repo.usageCalls[2])
	assert.Equal(t, 0, repo.usageCalls[1])
}

func TestMatchUsageBreaksPriorityTie(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{ID: 1, Pattern: `hi`, ResponseText: "worn", Priority: 5, UsageCount: 5, Active: true},
		model.Template{ID: 2, Pattern: `hi`, ResponseText: "fresh", Priority: 5, UsageCount: 2, Active: true},
	)
	m := New(repo, time.Minute)

	result, err := m.Match(context.Background(), "hi")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(2), result.Template.ID)
}

func TestMatchSkipsBadRegex(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{ID: 1, Pattern: `([`, ResponseText: "broken", Priority: 10, Active: true},
		model.Template{ID: 2, Pattern: `hello`, ResponseText: "ok", Priority: 1, Active: true},
	)
	m := New(repo, time.Minute)

	result, err := m.Match(context.Background(), "hello")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(2), result.Template.ID)
}

func TestMatchIgnoresInactiveAndEmptyInput(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{ID: 1, Pattern: `.*`, ResponseText: "off", Priority: 10, Active: false},
	)
	m := New(repo, time.Minute)

	result, err := m.Match(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = m.Match(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestMatchCaseInsensitiveViaNormalization(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{ID: 1, Pattern: `\bgood morning\b`, ResponseText: "morning", Priority: 1, Active: true},
	)
	m := New(repo, time.Minute)

	result, err := m.Match(context.Background(), "GOOD MORNING!")
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestMatchCachesTemplates(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{ID: 1, Pattern: `hello`, ResponseText: "hi", Priority: 1, Active: true},
	)
	m := New(repo, time.Minute)

	for i := 0; i < 5; i++ {
		_, err := m.Match(context.Background(), "hello")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.findCalls)
}

func TestMatchReusesStaleCacheOnRepoError(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{ID: 1, Pattern: `hello`, ResponseText: "hi", Priority: 1, Active: true},
	)
	m := New(repo, time.Nanosecond)

	result, err := m.Match(context.Background(), "hello")
	require.NoError(t, err)
	require.NotNil(t, result)

	repo.findErr = errors.New("mysql is down")
	time.Sleep(time.Millisecond)

	result, err = m.Match(context.Background(), "hello")
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestMatchExtractsNameForNameCollection(t *testing.T) {
	repo := newFakeTemplateRepo(
		model.Template{
			ID:           1,
			Pattern:      `\bmy name is\b|\bcall me\b|\bi'm\s+[a-z]+\b`,
			ResponseText: "Nice to meet you, {name}!",
			Category:     model.CategoryNameCollection,
			Priority:     20,
			Active:       true,
		},
	)
	m := New(repo, time.Minute)

	result, err := m.Match(context.Background(), "Hi, I'm Alex and I like cats")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Alex", result.ExtractedName)

	// 命中模板但候选不可信：不产出姓名，模板仍然有效
	result, err = m.Match(context.Background(), "I'm really busy")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "", result.ExtractedName)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"my name is", "my name is mary jane", "Mary Jane"},
		{"contraction", "Hi, I'm Alex and I like cats", "Alex"},
		{"call me", "you can call me Bob", "Bob"},
		{"i am", "I am Priya", "Priya"},
		{"trailing form", "Vlad is my name", "Vlad"},
		{"state not a name", "I'm really busy", ""},
		{"mood not a name", "i am tired", ""},
		{"single letter rejected", "call me X", ""},
		{"no pattern", "the weather is nice today", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.input))
		})
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Mary Jane", titleCase("mARY jANE"))
	assert.Equal(t, "Bob", titleCase("BOB"))
}
