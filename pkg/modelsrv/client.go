// Package modelsrv provides a client for the local model server:
// the chat-completion endpoint and the health/heartbeat status endpoint.
package modelsrv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
)

// Client defines the interface for the local model server client.
type Client interface {
	// Status 拉取心跳/状态元数据（last_heartbeat、内存、模型列表）。
	Status(ctx context.Context) (*StatusPayload, error)
	// Handshake 对推理端点做一次轻量握手，确认其在线。
	Handshake(ctx context.Context) error
	// Chat 以 role-based 消息调用聊天接口并返回完整应答文本。
	Chat(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// StatusPayload 是状态端点返回的心跳元数据。
type StatusPayload struct {
	LastHeartbeat int64    `json:"last_heartbeat"` // epoch 秒
	TotalMemory   uint64   `json:"total_memory"`
	FreeMemory    uint64   `json:"free_memory"`
	Models        []string `json:"models"`
}

type httpClient struct {
	cfg    config.ModelServerConfig
	client *http.Client
}

// NewClient creates a new model server client from the config.
func NewClient(cfg config.ModelServerConfig) Client {
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type chatRequest struct {
	Model    string              `json:"model"`
	Messages []model.ChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Status calls the status endpoint and decodes the heartbeat payload.
func (c *httpClient) Status(ctx context.Context) (*StatusPayload, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.StatusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call status endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned non-200 status: %s", resp.Status)
	}

	var payload StatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode status payload: %w", err)
	}
	return &payload, nil
}

// Handshake issues a lightweight GET against the models endpoint.
func (c *httpClient) Handshake(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create handshake request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference endpoint returned non-200 status: %s", resp.Status)
	}
	return nil
}

// Chat calls the OpenAI-compatible chat completion API (non-streaming).
func (c *httpClient) Chat(ctx context.Context, messages []model.ChatMessage) (string, error) {
	reqBody := chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   false,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("chat api returned no choices")
	}
	return chat.Choices[0].Message.Content, nil
}
