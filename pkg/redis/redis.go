package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-social/config"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix 所有key的公共前缀
const KeyPrefix = "social:"

// Store 封装Redis客户端，提供在线状态、未读数、最近会话
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// InitRedis 初始化Redis连接
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		// 连接池配置
		PoolSize:     10,              // 连接池大小
		MinIdleConns: 5,               // 最小空闲连接
		MaxRetries:   3,               // 最大重试次数
		DialTimeout:  5 * time.Second, // 连接超时
		ReadTimeout:  3 * time.Second, // 读超时
		WriteTimeout: 3 * time.Second, // 写超时
	})

	// 测试连接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	return NewStore(client), nil
}

// NewStore 用已有客户端创建（测试中接miniredis）
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// Client 获取Redis客户端
func (s *Store) Client() *redis.Client {
	return s.client
}

// Close 关闭Redis连接
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// HealthCheck 检查Redis健康状态
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("redis客户端未初始化")
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis连接异常: %w", err)
	}
	return nil
}
