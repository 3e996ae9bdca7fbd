package mq

import (
	"context"
	"fmt"
	"time"

	"tari-sdk/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaProducer 实现 Producer 接口
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer 创建 Kafka 生产者
// brokers: Kafka 节点地址列表 (e.g. ["localhost:9092"])
func NewKafkaProducer(brokers []string) *KafkaProducer {
	// Writer 不绑定 Topic，每条消息自带 Topic，方便 Relay 转发多个主题
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},    // 按 Key 哈希，同一交易的事件有序
		AllowAutoTopicCreation: true,             // 开发环境允许自动创建 Topic
		RequiredAcks:           kafka.RequireAll, // 等待所有 ISR 副本确认
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
	}

	return &KafkaProducer{writer: writer}
}

// Publish 发送消息到 Kafka
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error("[Kafka] publish failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("kafka write error: %w", err)
	}
	return nil
}

// Close 关闭连接
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// KafkaConsumer 实现 Consumer 接口
type KafkaConsumer struct {
	brokers []string
	groupID string
	reader  *kafka.Reader
}

// NewKafkaConsumer 创建 Kafka 消费者
func NewKafkaConsumer(brokers []string, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		brokers: brokers,
		groupID: groupID,
	}
}

// Subscribe 订阅 Kafka 主题
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	// GroupID: 同组内同一分区只会被一个消费者消费
	// StartOffset: 新组从最早的消息开始
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.brokers,
		GroupID:     c.groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.FirstOffset,
	})

	logger.Info("[Kafka MQ] subscribed", zap.String("topic", topic), zap.String("group", c.groupID))

	for {
		// 1. 读取消息 (阻塞直到有消息)
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil // 上下文取消，退出
			}
			logger.Warn("[Kafka MQ] fetch failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		msg := &Message{
			ID:      fmt.Sprintf("%d:%d", m.Partition, m.Offset),
			Topic:   m.Topic,
			Key:     string(m.Key),
			Payload: m.Value,
		}

		// 2. 处理失败的消息不提交 Offset，重启后会重新投递
		if err := handler(msg); err != nil {
			logger.Warn("[Kafka MQ] handler failed", zap.String("id", msg.ID), zap.Error(err))
			continue
		}

		// 3. 手动提交 Offset
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.Warn("[Kafka MQ] commit failed", zap.Error(err))
		}
	}
}

// Close 关闭消费者
func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
