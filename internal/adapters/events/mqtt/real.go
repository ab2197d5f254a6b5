package mqtt

import (
	"context"
	"fmt"
	"time"

	"cat-virtual/internal/domain/petstate"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealPublisher publica en un broker MQTT real.
type RealPublisher struct {
	client paho.Client
	topic  string
}

var _ petstate.Publisher = (*RealPublisher)(nil)

// NewRealPublisher conecta al broker. clientID vacío usa "cat-virtual".
func NewRealPublisher(broker, topic, clientID string) (*RealPublisher, error) {
	if clientID == "" {
		clientID = "cat-virtual"
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{client: client, topic: topic}, nil
}

// Publish manda el estado como mensaje retained (QoS 0): quien se suscribe
// recibe enseguida el último estado conocido.
func (p *RealPublisher) Publish(ctx context.Context, c petstate.Change) error {
	payload, err := FormatPayload(c)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	token := p.client.Publish(TopicFor(p.topic, c), 0, true, payload)

	wait := 5 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		wait = time.Until(dl)
	}
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected indica si la conexión con el broker está activa.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close desconecta del broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
