// Package rediscontainer runs a throwaway Redis for integration tests.
package rediscontainer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const image = "redis:7-alpine"

var (
	once      sync.Once
	setupErr  error
	container *tcredis.RedisContainer
	addr      string

	// ready blocks until the server at addr answers.
	ready = waitForRedis
)

// Addr exposes the Redis host:port combination used by integration tests.
func Addr() string { return addr }

// Setup starts the Redis container and waits until it answers PING.
// It returns an error, rather than failing, when Docker is unavailable so
// callers can skip.
func Setup() error {
	once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				setupErr = fmt.Errorf("docker unavailable: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		c, err := tcredis.Run(ctx, image)
		if err != nil {
			setupErr = fmt.Errorf("start redis container: %w", err)
			return
		}
		container = c

		endpoint, err := c.Endpoint(ctx, "")
		if err != nil {
			setupErr = fmt.Errorf("redis endpoint: %w", err)
			terminate()
			return
		}
		addr = endpoint

		if err := ready(addr, 10*time.Second); err != nil {
			setupErr = err
			terminate()
		}
	})
	return setupErr
}

// terminate stops a container whose setup failed; setupErr is kept.
func terminate() {
	if container != nil {
		_ = container.Terminate(context.Background())
	}
	container, addr = nil, ""
}

// Teardown stops the Redis container if it is running and resets Setup.
func Teardown() error {
	var err error
	if container != nil {
		err = container.Terminate(context.Background())
	}
	container, addr, setupErr = nil, "", nil
	once = sync.Once{}
	return err
}

func waitForRedis(addr string, timeout time.Duration) error {
	client := goredis.NewClient(&goredis.Options{Addr: addr, DialTimeout: 200 * time.Millisecond})
	defer client.Close()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		err := client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("redis container did not respond to ping")
}
