package wrapper

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/vault-driver/pkg/config"
)

// ErrUnsupportedConversion indicates the wrapper does not implement conversion
// from the source value's type.
var ErrUnsupportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// NewBoolConfig wraps override as a bool config. Byte values are parsed with
// strconv.ParseBool.
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newValueConfig(override, defaultValue, func(b []byte) (bool, error) {
		return strconv.ParseBool(string(b))
	}, nil)
}

// NewUint64Config wraps override as a uint64 config. Byte values are parsed as
// base 10.
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newValueConfig(override, defaultValue, func(b []byte) (uint64, error) {
		return strconv.ParseUint(string(b), 10, 64)
	}, func(v interface{}) (uint64, bool) {
		u, ok := v.(uint)
		return uint64(u), ok
	})
}

// NewStringConfig wraps override as a string config.
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return newValueConfig(override, defaultValue, func(b []byte) (string, error) {
		return string(b), nil
	}, nil)
}

type valueConfig[T any] struct {
	override     config.Config
	defaultValue T

	// parse converts raw byte values, as produced by env and file sources
	parse func([]byte) (T, error)

	// convert optionally accepts additional native types
	convert func(interface{}) (T, bool)

	stateMu   sync.RWMutex
	lastValue T
}

func newValueConfig[T any](
	override config.Config,
	defaultValue T,
	parse func([]byte) (T, error),
	convert func(interface{}) (T, bool),
) *valueConfig[T] {
	return &valueConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		parse:        parse,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets the config value and propagates any errors that arise. The
// last known value is returned alongside an error.
func (c *valueConfig[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := c.override.Get(ctx)
	if err == config.ErrNoValue {
		c.store(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return c.last(), err
	}

	var value T
	switch typed := raw.(type) {
	case []byte:
		value, err = c.parse(typed)
		if err != nil {
			return c.last(), err
		}
	case T:
		value = typed
	default:
		var ok bool
		if c.convert != nil {
			value, ok = c.convert(raw)
		}
		if !ok {
			return c.last(), ErrUnsupportedConversion
		}
	}

	c.store(value)
	return value, nil
}

// Get is GetSafe without the error.
func (c *valueConfig[T]) Get(ctx context.Context) T {
	value, _ := c.GetSafe(ctx)
	return value
}

// Shutdown signals the underlying config to stop.
func (c *valueConfig[T]) Shutdown() {
	c.override.Shutdown()
}

func (c *valueConfig[T]) store(value T) {
	c.stateMu.Lock()
	c.lastValue = value
	c.stateMu.Unlock()
}

func (c *valueConfig[T]) last() T {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastValue
}
