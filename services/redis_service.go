package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"agrisense-http-service/config"
)

// RedisServiceInterface is the response cache for the hot read paths:
// merged weather payloads and zone health reports
type RedisServiceInterface interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheWeather(location string, weatherData interface{}, expiration time.Duration) error
	GetWeather(location string, dest interface{}) error
	CacheZoneHealth(zoneID string, health interface{}, expiration time.Duration) error
	GetZoneHealth(zoneID string, dest interface{}) error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "",
		DB:       cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CacheWeather caches a merged weather payload for a location
func (s *RedisService) CacheWeather(location string, weatherData interface{}, expiration time.Duration) error {
	return s.Set("weather:"+location, weatherData, expiration)
}

// GetWeather gets a cached weather payload for a location
func (s *RedisService) GetWeather(location string, dest interface{}) error {
	return s.Get("weather:"+location, dest)
}

// CacheZoneHealth caches a zone health report
func (s *RedisService) CacheZoneHealth(zoneID string, health interface{}, expiration time.Duration) error {
	return s.Set("zone_health:"+zoneID, health, expiration)
}

// GetZoneHealth gets a cached zone health report
func (s *RedisService) GetZoneHealth(zoneID string, dest interface{}) error {
	return s.Get("zone_health:"+zoneID, dest)
}
