package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/diagnostics"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/health"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/report"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/testutils"
)

type fakePublisher struct {
	awaitErr     error
	published    []*paho.Publish
	disconnected bool
	done         chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{done: make(chan struct{})}
}

func (f *fakePublisher) AwaitConnection(_ context.Context) error {
	return f.awaitErr
}

func (f *fakePublisher) Publish(_ context.Context, p *paho.Publish) (*paho.PublishResponse, error) {
	f.published = append(f.published, p)
	return &paho.PublishResponse{}, nil
}

func (f *fakePublisher) Disconnect(_ context.Context) error {
	f.disconnected = true
	close(f.done)
	return nil
}

func (f *fakePublisher) Done() <-chan struct{} {
	return f.done
}

func testReport() *report.Report {
	r := report.New("hpd-pricing.service", "http://127.0.0.1:8000/health", health.DefaultPolicy(), time.Now(), health.Result{
		Status:   health.StatusFail,
		Reason:   health.ReasonServiceNotActive,
		Attempts: 0,
	})
	r.Diagnostics = &diagnostics.Report{
		Logs:   []string{"a log line"},
		Errors: []string{"failed to read unit file"},
	}
	return r
}

func TestMQTTNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("connects once and publishes each report", func(t *testing.T) {
		pub := newFakePublisher()
		dials := 0
		n := NewMQTTNotifier(testutils.Logger(t), config.MQTT{
			Enabled:   true,
			BrokerURL: "tcp://localhost:1883",
			Topic:     "hpd/health",
		})
		n.dial = func(_ context.Context) (publisher, error) {
			dials++
			return pub, nil
		}

		require.NoError(t, n.Notify(ctx, testReport()))
		require.NoError(t, n.Notify(ctx, testReport()))
		require.NoError(t, n.Close(ctx))

		assert.Equal(t, 1, dials)
		require.Len(t, pub.published, 2)
		assert.Equal(t, "hpd/health", pub.published[0].Topic)
		assert.Equal(t, byte(1), pub.published[0].QoS)
		assert.True(t, pub.disconnected)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(pub.published[0].Payload, &decoded))
		assert.Equal(t, "service_not_active", decoded["reason"])
	})

	t.Run("connection failure", func(t *testing.T) {
		pub := newFakePublisher()
		pub.awaitErr = errors.New("connection refused")
		n := NewMQTTNotifier(testutils.Logger(t), config.MQTT{Enabled: true, Topic: "hpd/health"})
		n.dial = func(_ context.Context) (publisher, error) {
			return pub, nil
		}

		err := n.Notify(ctx, testReport())
		assert.ErrorContains(t, err, "failed to connect to mqtt broker")
		assert.Empty(t, pub.published)
	})

	t.Run("close without connection", func(t *testing.T) {
		n := NewMQTTNotifier(testutils.Logger(t), config.MQTT{Enabled: true})
		assert.NoError(t, n.Close(ctx))
	})
}

func TestPayload(t *testing.T) {
	r := testReport()

	raw, err := Payload(r)
	require.NoError(t, err)

	var decoded report.Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotNil(t, decoded.Diagnostics)
	assert.Empty(t, decoded.Diagnostics.Logs)
	assert.Equal(t, []string{"failed to read unit file"}, decoded.Diagnostics.Errors)

	// The input report keeps its logs.
	assert.Equal(t, []string{"a log line"}, r.Diagnostics.Logs)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Nop{}, New(testutils.Logger(t), config.MQTT{}))
	assert.IsType(t, &MQTTNotifier{}, New(testutils.Logger(t), config.MQTT{Enabled: true}))
}
