package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tari-sdk/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisProducer 实现 Producer 接口 (Redis Streams)
type RedisProducer struct {
	client *redis.Client
	maxLen int64
}

// NewRedisProducer 创建 Redis 生产者，maxLen 为 Stream 的近似长度上限 (0 表示不限制)
func NewRedisProducer(client *redis.Client, maxLen int64) *RedisProducer {
	return &RedisProducer{client: client, maxLen: maxLen}
}

// Publish 发送消息到 Redis Stream (XADD)
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()
	if err != nil {
		logger.Error("[Redis MQ] publish failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

// Close 客户端由调用方管理
func (p *RedisProducer) Close() error {
	return nil
}

// RedisConsumer 实现 Consumer 接口
type RedisConsumer struct {
	client *redis.Client
	group  string
	name   string
}

// NewRedisConsumer 创建 Redis 消费者
func NewRedisConsumer(client *redis.Client, group, name string) *RedisConsumer {
	return &RedisConsumer{client: client, group: group, name: name}
}

// Subscribe 订阅 Redis Stream
func (c *RedisConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	// 1. 创建 Consumer Group (如果不存在)
	// XGROUP CREATE <stream> <group> 0 MKSTREAM
	err := c.client.XGroupCreateMkStream(ctx, topic, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("创建消费者组失败: %w", err)
	}

	logger.Info("[Redis MQ] subscribed", zap.String("topic", topic), zap.String("group", c.group))

	for {
		if ctx.Err() != nil {
			return nil
		}

		// 2. 阻塞读取消息
		// XREADGROUP GROUP <group> <consumer> BLOCK 2000 COUNT 10 STREAMS <topic> >
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{topic, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue // 超时无消息
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("[Redis MQ] read failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		// 3. 处理消息
		for _, stream := range streams {
			for _, xMessage := range stream.Messages {
				msg, ok := decodeStreamMessage(topic, xMessage)
				if !ok {
					logger.Warn("[Redis MQ] payload missing", zap.String("id", xMessage.ID))
					c.ack(ctx, topic, xMessage.ID)
					continue
				}

				if err := handler(msg); err != nil {
					logger.Warn("[Redis MQ] handler failed", zap.String("id", msg.ID), zap.Error(err))
					continue
				}
				c.ack(ctx, topic, xMessage.ID)
			}
		}
	}
}

func decodeStreamMessage(topic string, x redis.XMessage) (*Message, bool) {
	payload, ok := x.Values["payload"].(string)
	if !ok {
		return nil, false
	}
	key, _ := x.Values["key"].(string)
	return &Message{
		ID:      x.ID,
		Topic:   topic,
		Key:     key,
		Payload: []byte(payload),
	}, true
}

func (c *RedisConsumer) ack(ctx context.Context, topic, id string) {
	c.client.XAck(ctx, topic, c.group, id)
}

func (c *RedisConsumer) Close() error {
	return c.client.Close()
}
