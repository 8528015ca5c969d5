// Package service 提供了搜索相关的业务逻辑。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"nova-chat-go/internal/model"
	"nova-chat-go/pkg/log"
)

// SearchService 接口定义了消息全文检索操作。
// 检索范围严格限制在调用方自己的会话内。
type SearchService interface {
	SearchMessages(ctx context.Context, sessionID, query string, topK int) ([]model.MessageSearchDTO, error)
}

type searchService struct {
	esClient  *elasticsearch.Client
	indexName string
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(esClient *elasticsearch.Client, indexName string) SearchService {
	return &searchService{esClient: esClient, indexName: indexName}
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64            `json:"_score"`
			Source model.EsMessageDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchMessages 在调用方的历史消息中做全文检索。
func (s *searchService) SearchMessages(ctx context.Context, sessionID, query string, topK int) ([]model.MessageSearchDTO, error) {
	if topK <= 0 {
		topK = 10
	}
	log.Infof("[SearchService] 消息检索, session=%s, query='%s', topK=%d", sessionID, query, topK)

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"match": map[string]interface{}{
						"content": query,
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{
						"session_id": sessionID,
					},
				},
			},
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexName),
		s.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[SearchService] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.MessageSearchDTO, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, model.MessageSearchDTO{
			ConversationID: hit.Source.ConversationID,
			Role:           hit.Source.Role,
			Content:        hit.Source.Content,
			Mode:           hit.Source.Mode,
			CreatedAt:      hit.Source.CreatedAt,
			Score:          hit.Score,
		})
	}

	log.Infof("[SearchService] 消息检索完成, 返回 %d 条结果", len(results))
	return results, nil
}
