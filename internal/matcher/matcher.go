// Package matcher 实现了模板触发模式的编译与匹配。
// 匹配完全发生在应用层：模板列表从存储读出后在内存中缓存，
// 正则由本包编译求值，不依赖存储引擎的 REGEXP 能力。
package matcher

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"nova-chat-go/internal/model"
	"nova-chat-go/internal/repository"
	"nova-chat-go/pkg/log"
)

// Result 是一次模板匹配的结果。
// 当命中 name_collection 类模板且原始输入中含有可信姓名时，
// ExtractedName 携带清洗后的姓名。
type Result struct {
	Template      *model.Template
	ExtractedName string
}

// Matcher 定义了模板匹配器的接口。
type Matcher interface {
	// Match 对输入求值并返回最高优先级的命中模板；无命中时返回 (nil, nil)。
	// 命中模板的使用计数恰好递增一次。
	Match(ctx context.Context, input string) (*Result, error)
}

type patternMatcher struct {
	repo     repository.TemplateRepository
	cacheTTL time.Duration

	mu        sync.Mutex
	templates []model.Template
	fetchedAt time.Time
	compiled  map[uint]*regexp.Regexp
	bad       map[uint]bool
}

// New 创建一个新的 Matcher。cacheTTL <= 0 时默认缓存 30 秒。
func New(repo repository.TemplateRepository, cacheTTL time.Duration) Matcher {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &patternMatcher{
		repo:     repo,
		cacheTTL: cacheTTL,
		compiled: make(map[uint]*regexp.Regexp),
		bad:      make(map[uint]bool),
	}
}

// Match 对小写化后的输入逐个尝试启用的模板。
// 模板顺序由仓储给出：(priority DESC, usage_count ASC)，首个结构化命中者胜出。
func (m *patternMatcher) Match(ctx context.Context, input string) (*Result, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		// 空白输入永不匹配
		return nil, nil
	}

	templates, err := m.activeTemplates()
	if err != nil {
		return nil, err
	}

	for i := range templates {
		tpl := &templates[i]
		re := m.compile(tpl)
		if re == nil {
			// 模板正则非法属于模板编辑问题，跳过该模板继续尝试下一个
			continue
		}
		if !re.MatchString(normalized) {
			continue
		}

		if err := m.repo.IncrementUsage(tpl.ID); err != nil {
			log.Warnf("[Matcher] 递增模板使用计数失败, templateID=%d: %v", tpl.ID, err)
		}

		result := &Result{Template: tpl}
		if tpl.Category == model.CategoryNameCollection {
			// 姓名提取针对原始输入，而不是小写化后的文本
			result.ExtractedName = ExtractName(input)
		}
		return result, nil
	}

	return nil, nil
}

// activeTemplates 返回启用的模板列表，带 TTL 的内存缓存。
func (m *patternMatcher) activeTemplates() ([]model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.templates != nil && time.Since(m.fetchedAt) < m.cacheTTL {
		return m.templates, nil
	}

	templates, err := m.repo.FindActive()
	if err != nil {
		if m.templates != nil {
			// 读库失败时继续使用旧缓存
			log.Warnf("[Matcher] 刷新模板缓存失败，沿用旧缓存: %v", err)
			return m.templates, nil
		}
		return nil, err
	}

	m.templates = templates
	m.fetchedAt = time.Now()
	// 模板内容可能已被管理端修改，随缓存一起重建编译结果
	m.compiled = make(map[uint]*regexp.Regexp)
	m.bad = make(map[uint]bool)
	return m.templates, nil
}

// compile 返回模板的编译结果；编译失败的模板记为 bad，之后不再重试。
func (m *patternMatcher) compile(tpl *model.Template) *regexp.Regexp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bad[tpl.ID] {
		return nil
	}
	if re, ok := m.compiled[tpl.ID]; ok {
		return re
	}

	re, err := regexp.Compile(tpl.Pattern)
	if err != nil {
		log.Warnf("[Matcher] 模板正则编译失败, templateID=%d, pattern=%q: %v", tpl.ID, tpl.Pattern, err)
		m.bad[tpl.ID] = true
		return nil
	}
	m.compiled[tpl.ID] = re
	return re
}
