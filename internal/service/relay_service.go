package service

import (
	"context"
	"time"

	"tari-sdk/internal/service/mq"
	"tari-sdk/pkg/lock"
	"tari-sdk/pkg/logger"

	"go.uber.org/zap"
)

const (
	relayBatchSize   = 50
	relayMaxAttempts = 5
	relayLockKey     = "tari:relay"
)

// RelayService 负责将本地消息表的消息搬运到 MQ
type RelayService struct {
	store    OutboxStore
	producer mq.Producer
	interval time.Duration
	lock     lock.DistributedLock
	log      *zap.Logger
}

func NewRelayService(store OutboxStore, producer mq.Producer, interval time.Duration) *RelayService {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &RelayService{
		store:    store,
		producer: producer,
		interval: interval,
		log:      logger.Named("relay"),
	}
}

// WithLock 多实例部署时，同一时刻只有持锁的实例搬运消息
func (s *RelayService) WithLock(l lock.DistributedLock) *RelayService {
	s.lock = l
	return s
}

// Start 阻塞直到 ctx 结束
func (s *RelayService) Start(ctx context.Context) {
	s.log.Info("[Relay] 启动消息中继服务", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("[Relay] 停止服务")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *RelayService) tick(ctx context.Context) {
	if s.lock == nil {
		s.processPendingMessages(ctx)
		return
	}

	token, ok, err := s.lock.Acquire(ctx, relayLockKey, 10*s.interval)
	if err != nil {
		s.log.Warn("[Relay] 获取锁失败", zap.Error(err))
		return
	}
	if !ok {
		return // 其他实例正在处理
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), relayLockKey, token); err != nil {
			s.log.Warn("[Relay] 释放锁失败", zap.Error(err))
		}
	}()
	s.processPendingMessages(ctx)
}

// processPendingMessages 返回成功投递的条数
func (s *RelayService) processPendingMessages(ctx context.Context) int {
	// 1. 获取一批 Pending 消息
	messages, err := s.store.PendingOutbox(ctx, relayBatchSize)
	if err != nil {
		s.log.Error("[Relay] 查询消息失败", zap.Error(err))
		return 0
	}
	if len(messages) == 0 {
		return 0
	}

	sent := 0
	for _, msg := range messages {
		// 2. 发送 MQ，Key 为交易哈希，同一交易的事件落在同一分区
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			s.log.Warn("[Relay] 发送失败", zap.Uint64("id", msg.ID), zap.Int("attempts", msg.Attempts+1), zap.Error(err))
			if err := s.store.MarkOutboxRetry(ctx, msg.ID, relayMaxAttempts); err != nil {
				s.log.Error("[Relay] 更新重试次数失败", zap.Uint64("id", msg.ID), zap.Error(err))
			}
			continue
		}

		// 3. 发送成功才更新为 SENT => At-least-once，Consumer 需做好幂等
		if err := s.store.MarkOutboxSent(ctx, msg.ID); err != nil {
			s.log.Error("[Relay] 更新状态失败", zap.Uint64("id", msg.ID), zap.Error(err))
			continue
		}
		sent++
	}

	s.log.Debug("[Relay] 批次完成", zap.Int("total", len(messages)), zap.Int("sent", sent))
	return sent
}
