package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the instruments recorded by the dispatcher. The zero value
// is not usable; use NewMetrics or Noop.
type Metrics struct {
	dispatches         metric.Int64Counter
	subscriberFailures metric.Int64Counter
	conflicts          metric.Int64Counter
	registrations      metric.Int64Counter
	resets             metric.Int64Counter
	subscribers        metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return newMetrics(otel.Meter(ServiceName))
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	m, _ := newMetrics(noop.NewMeterProvider().Meter(ServiceName))
	return m
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.dispatches, err = meter.Int64Counter("framerelay_channel_dispatches_total",
		metric.WithDescription("Channel invocations by channel")); err != nil {
		return nil, err
	}
	if m.subscriberFailures, err = meter.Int64Counter("framerelay_subscriber_failures_total",
		metric.WithDescription("Subscriber callbacks that returned an error")); err != nil {
		return nil, err
	}
	if m.conflicts, err = meter.Int64Counter("framerelay_relay_conflicts_total",
		metric.WithDescription("Relays that lost the singleton claim and went inert")); err != nil {
		return nil, err
	}
	if m.registrations, err = meter.Int64Counter("framerelay_registry_registrations_total",
		metric.WithDescription("Instances registered in the singleton registry")); err != nil {
		return nil, err
	}
	if m.resets, err = meter.Int64Counter("framerelay_registry_resets_total",
		metric.WithDescription("Global registry resets")); err != nil {
		return nil, err
	}
	if m.subscribers, err = meter.Int64UpDownCounter("framerelay_channel_subscribers",
		metric.WithDescription("Live subscribers by channel")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) ChannelDispatched(ctx context.Context, channel string) {
	m.dispatches.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}

func (m *Metrics) SubscriberFailed(ctx context.Context, channel string) {
	m.subscriberFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}

func (m *Metrics) SubscribersChanged(ctx context.Context, channel string, delta int64) {
	m.subscribers.Add(ctx, delta, metric.WithAttributes(attribute.String("channel", channel)))
}

func (m *Metrics) RelayConflict(ctx context.Context) {
	m.conflicts.Add(ctx, 1)
}

func (m *Metrics) Registered(ctx context.Context, key string) {
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
}

func (m *Metrics) RegistryReset(ctx context.Context) {
	m.resets.Add(ctx, 1)
}
