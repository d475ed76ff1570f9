package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultOutboxSize bounds messages held while disconnected.
const DefaultOutboxSize = 256

// Options configures a RealPublisher.
type Options struct {
	Broker   string
	ClientID string
	Topics   Topics

	// OutboxSize bounds messages kept while disconnected.
	OutboxSize int

	// Callbacks run on paho's goroutines; hand work to the main loop.
	OnConnect        func()
	OnConnectionLost func(err error)
	OnSet            func(cmd SetCommand)
}

// RealPublisher publishes to an actual MQTT broker and subscribes to the
// tiles' set topics.
type RealPublisher struct {
	client paho.Client
	opts   Options

	// send delivers one message to the broker.
	send func(m message) error

	mu        sync.Mutex
	connected bool
	pending   *outbox
}

// NewRealPublisher connects to the broker. With connect retry enabled the
// first connection may complete later; publishes are held until then.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.ClientID == "" {
		opts.ClientID = "tiled"
	}
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = DefaultOutboxSize
	}
	p := &RealPublisher{
		opts:    opts,
		pending: newOutbox(opts.OutboxSize),
	}
	p.send = p.sendToBroker

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(opts.Topics.System(), will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(co)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	log.Printf("mqtt: connected to %s", p.opts.Broker)

	if p.opts.OnSet != nil {
		filter := p.opts.Topics.SetFilter()
		token := c.Subscribe(filter, 1, p.handleSet)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("mqtt: subscribe %s: %v", filter, token.Error())
		}
	}

	p.resume()

	if p.opts.OnConnect != nil {
		p.opts.OnConnect()
	}
}

// resume replays held messages and then marks the publisher connected.
// Publishes arriving during the replay are held and replayed after the
// older ones, so order is kept across a reconnect.
func (p *RealPublisher) resume() {
	replayed := 0
	for {
		p.mu.Lock()
		held := p.pending.drain()
		if len(held) == 0 {
			p.connected = true
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()

		replayed += len(held)
		for _, m := range held {
			if err := p.send(m); err != nil {
				log.Printf("mqtt: replay to %s: %v", m.topic, err)
			}
		}
	}
	if replayed > 0 {
		log.Printf("mqtt: replayed %d held messages", replayed)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	log.Printf("mqtt: connection lost: %v", err)
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	if p.opts.OnConnectionLost != nil {
		p.opts.OnConnectionLost(err)
	}
}

func (p *RealPublisher) handleSet(_ paho.Client, msg paho.Message) {
	cmd, err := ParseSet(p.opts.Topics, msg.Topic(), msg.Payload())
	if err != nil {
		log.Printf("mqtt: ignoring %s: %v", msg.Topic(), err)
		return
	}
	p.opts.OnSet(cmd)
}

// Publish sends a tile event, QoS 0 and not retained.
func (p *RealPublisher) Publish(event TileEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(message{topic: p.opts.Topics.Events(event.Tile), payload: payload})
}

// PublishSystem sends a lifecycle event with QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(message{
		topic:    p.opts.Topics.System(),
		payload:  payload,
		qos:      1,
		retained: event.Retained,
	})
}

func (p *RealPublisher) publish(m message) error {
	p.mu.Lock()
	if !p.connected {
		p.pending.push(m)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.send(m)
}

func (p *RealPublisher) sendToBroker(m message) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Held returns the number of messages waiting for a connection.
func (p *RealPublisher) Held() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
