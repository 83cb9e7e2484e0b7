package session

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// RedisStore keeps the credential under <prefix>:token and <prefix>:provider.
// Keys expire together with the token when its exp claim can be read.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) tokenKey() string    { return s.prefix + ":token" }
func (s *RedisStore) providerKey() string { return s.prefix + ":provider" }

func (s *RedisStore) Load() (Credential, bool, error) {
	vals, err := s.client.MGet(s.tokenKey(), s.providerKey()).Result()
	if err != nil {
		return Credential{}, false, fmt.Errorf("load: unable to read session keys: %w", err)
	}

	token, _ := vals[0].(string)
	if token == "" {
		return Credential{}, false, nil
	}
	provider, _ := vals[1].(string)
	return Credential{Token: token, Provider: Provider(provider)}, true, nil
}

func (s *RedisStore) Save(c Credential) error {
	var expireAt time.Time
	if claims, err := DecodeClaims(c.Token); err == nil && claims.ExpiresAt().After(s.now()) {
		expireAt = claims.ExpiresAt()
	}

	_, err := s.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Set(s.tokenKey(), c.Token, 0)
		if c.Provider != "" {
			pipe.Set(s.providerKey(), string(c.Provider), 0)
		} else {
			pipe.Del(s.providerKey())
		}
		if !expireAt.IsZero() {
			pipe.ExpireAt(s.tokenKey(), expireAt)
			pipe.ExpireAt(s.providerKey(), expireAt)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save: unable to write session keys: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear() error {
	if err := s.client.Del(s.tokenKey(), s.providerKey()).Err(); err != nil {
		return fmt.Errorf("clear: unable to delete session keys: %w", err)
	}
	return nil
}
