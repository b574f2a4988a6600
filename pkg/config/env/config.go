package env

import (
	"context"
	"os"
	"strings"

	"github.com/code-payments/vault-driver/pkg/config"
	"github.com/code-payments/vault-driver/pkg/config/wrapper"
)

type conf struct {
	key string
}

// NewConfig returns a config backed by the environment variable named by the
// upper cased key. The variable is read on every Get, so changes are picked up
// without restarting.
func NewConfig(key string) config.Config {
	return &conf{
		key: strings.ToUpper(key),
	}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	value := strings.TrimSpace(os.Getenv(c.key))
	if len(value) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(value), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}
