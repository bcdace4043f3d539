package bus

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/signalbus/signalbus/lifecycle"
)

// Option configures an Engine.
type Option func(*engineConfig)

// engineConfig contains construction-time configuration for the engine.
type engineConfig struct {
	// logger is the diagnostic sink for callback failures and API misuse.
	logger *zap.Logger

	// clk is the timestamp source for emitted events.
	clk clock.Clock

	// scope, when set, tears the engine down when it ends.
	scope *lifecycle.Scope
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		logger: zap.NewNop(),
		clk:    clock.New(),
	}
}

// WithLogger sets the diagnostic sink. Subscriber failures are reported
// here and never propagated.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the timestamp source. Tests can pass a mock clock.
func WithClock(clk clock.Clock) Option {
	return func(c *engineConfig) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// WithScope ties the engine's lifetime to a lifecycle scope: when the
// scope is torn down, the engine closes.
func WithScope(scope *lifecycle.Scope) Option {
	return func(c *engineConfig) {
		c.scope = scope
	}
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

// subscribeConfig contains per-subscription configuration.
type subscribeConfig struct {
	// transform derives the delivered payload from the raw one.
	transform Transform

	// trigger, when set, tears the subscription down when it fires.
	trigger *Trigger
}

// WithTransform sets a pure payload transform applied before delivery.
func WithTransform(t Transform) SubscribeOption {
	return func(c *subscribeConfig) {
		c.transform = t
	}
}

// WithUnsubscribeOn attaches a conditional-unsubscribe trigger: the
// subscription is torn down the moment the trigger fires.
func WithUnsubscribeOn(t Trigger) SubscribeOption {
	return func(c *subscribeConfig) {
		c.trigger = &t
	}
}
