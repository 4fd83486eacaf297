package notify

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/report"
)

var _ Notifier = (*MQTTNotifier)(nil)

const connectTimeout = 10 * time.Second

type publisher interface {
	AwaitConnection(ctx context.Context) error
	Publish(ctx context.Context, p *paho.Publish) (*paho.PublishResponse, error)
	Disconnect(ctx context.Context) error
	Done() <-chan struct{}
}

// MQTTNotifier publishes reports to a topic. The connection is opened lazily
// on the first report and reused by later ones.
type MQTTNotifier struct {
	logger zerolog.Logger
	cfg    config.MQTT
	mu     sync.Mutex
	cm     publisher
	dial   func(ctx context.Context) (publisher, error)
}

func NewMQTTNotifier(logger zerolog.Logger, cfg config.MQTT) *MQTTNotifier {
	n := &MQTTNotifier{
		logger: logger.With().Str("component", "mqtt_notifier").Logger(),
		cfg:    cfg,
	}
	n.dial = n.connect
	return n
}

func (n *MQTTNotifier) clientID() string {
	if n.cfg.ClientID != "" {
		return n.cfg.ClientID
	}
	return "hpdctl-" + uuid.NewString()
}

func (n *MQTTNotifier) connect(ctx context.Context) (publisher, error) {
	brokerURL, err := url.Parse(n.cfg.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mqtt url: %w", err)
	}
	cm, err := autopaho.NewConnection(ctx, autopaho.ClientConfig{
		ServerUrls:        []*url.URL{brokerURL},
		ConnectUsername:   n.cfg.Username,
		ConnectPassword:   []byte(n.cfg.Password),
		KeepAlive:         30,
		ConnectRetryDelay: 5 * time.Second,
		OnConnectionUp: func(_ *autopaho.ConnectionManager, _ *paho.Connack) {
			n.logger.Debug().Str("url", n.cfg.BrokerURL).Msg("connected to mqtt broker")
		},
		OnConnectError: func(err error) {
			n.logger.Warn().Err(err).Msg("failed to connect to mqtt broker")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: n.clientID(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mqtt connection: %w", err)
	}
	return cm, nil
}

func (n *MQTTNotifier) Notify(ctx context.Context, r *report.Report) error {
	payload, err := Payload(r)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cm == nil {
		cm, err := n.dial(ctx)
		if err != nil {
			return err
		}
		n.cm = cm
	}

	awaitCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := n.cm.AwaitConnection(awaitCtx); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	_, err = n.cm.Publish(ctx, &paho.Publish{
		Topic:   n.cfg.Topic,
		QoS:     1,
		Payload: payload,
		Properties: &paho.PublishProperties{
			ContentType: "application/json",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	n.logger.Debug().
		Str("topic", n.cfg.Topic).
		Str("run_id", r.RunID).
		Msg("published report")

	return nil
}

func (n *MQTTNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cm == nil {
		return nil
	}
	err := n.cm.Disconnect(ctx)
	<-n.cm.Done()
	n.cm = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect from mqtt broker: %w", err)
	}
	return nil
}

// New returns an MQTT notifier when publication is enabled and a no-op
// notifier otherwise.
func New(logger zerolog.Logger, cfg config.MQTT) Notifier {
	if !cfg.Enabled {
		return Nop{}
	}
	return NewMQTTNotifier(logger, cfg)
}
