// Package kafka 提供了路由决策事件的 Kafka 生产者。
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
	"nova-chat-go/pkg/log"
)

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。brokers 为空时跳过（事件发布被禁用）。
func InitProducer(cfg config.KafkaConfig) {
	if cfg.Brokers == "" {
		log.Info("Kafka 未配置，路由决策事件发布已禁用")
		return
	}
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// Enabled 返回生产者是否可用。
func Enabled() bool {
	return producer != nil
}

// ProduceRouteDecision 发送一条路由决策事件。
// 事件仅用于观测，发送失败只记录日志，不影响聊天链路。
func ProduceRouteDecision(decision model.RouteDecision) error {
	if producer == nil {
		return nil
	}
	eventBytes, err := json.Marshal(decision)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(decision.ConversationID),
			Value: eventBytes,
		},
	)
}
