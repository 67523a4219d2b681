package host

import (
	"crypto/rand"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/oklog/ulid/v2"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

const (
	mqttQoS            = 1
	mqttConnectTimeout = 5 * time.Second
	mqttPublishTimeout = 10 * time.Second
	mqttDisconnectWait = 250 // milliseconds
)

// MQTTOptions configures the broker connection of an MQTTOverlay.
type MQTTOptions struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// MQTTOverlay publishes overlay visibility as a retained message and relays
// enable/disable commands for the poller from the broker.
//
// Topics below the prefix:
//
//	availability    online / offline (last will)
//	overlay/state   visible / hidden
//	poller/set      ON / OFF, consumed
type MQTTOverlay struct {
	client mqtt.Client
	prefix string
	logger *slog.Logger

	mu        sync.Mutex
	onCommand func(enabled bool)
	pending   *bool // last command received before a handler was set
}

// NewMQTTOverlay creates an overlay controller backed by a broker
// connection. Call Connect before use.
func NewMQTTOverlay(opts MQTTOptions, logger *slog.Logger) *MQTTOverlay {
	if opts.ClientID == "" {
		opts.ClientID = "hud-autohide-" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	}

	o := &MQTTOverlay{prefix: strings.TrimSuffix(opts.TopicPrefix, "/")}
	o.logger = loggerOrDefault(logger).With("broker", opts.Broker)

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(60 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetWriteTimeout(mqttPublishTimeout).
		SetWill(o.topic("availability"), "offline", mqttQoS, true).
		SetOnConnectHandler(o.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			o.logger.Warn("mqtt connection lost, reconnecting", "error", err)
		})

	o.client = mqtt.NewClient(clientOpts)
	return o
}

func newMQTTOverlay(client mqtt.Client, prefix string, logger *slog.Logger) *MQTTOverlay {
	return &MQTTOverlay{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: loggerOrDefault(logger),
	}
}

// Connect starts connecting to the broker. The client keeps retrying in the
// background if the broker is not reachable within a few seconds.
func (o *MQTTOverlay) Connect() error {
	token := o.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		o.logger.Warn("mqtt broker not reachable yet, retrying in background")
		return nil
	}
	return token.Error()
}

// SetCommandHandler sets the function called for every poller/set command.
// The last command received while no handler was set, typically the
// retained one delivered on connect, is passed to fn before it returns.
func (o *MQTTOverlay) SetCommandHandler(fn func(enabled bool)) {
	o.mu.Lock()
	o.onCommand = fn
	pending := o.pending
	if fn != nil {
		o.pending = nil
	}
	o.mu.Unlock()

	if fn != nil && pending != nil {
		o.logger.Debug("applying poller command received before start", "enabled", *pending)
		fn(*pending)
	}
}

// SetOverlayVisibility implements interfaces.OverlayController. It does not
// wait for the broker.
func (o *MQTTOverlay) SetOverlayVisibility(visible bool) {
	state := "hidden"
	if visible {
		state = "visible"
	}

	token := o.client.Publish(o.topic("overlay/state"), mqttQoS, true, state)
	go func() {
		if token.WaitTimeout(mqttPublishTimeout) && token.Error() != nil {
			o.logger.Warn("failed to publish overlay state", "state", state, "error", token.Error())
		}
	}()
}

// Close publishes the offline marker and disconnects.
func (o *MQTTOverlay) Close() {
	if !o.client.IsConnected() {
		o.client.Disconnect(0)
		return
	}
	o.client.Publish(o.topic("availability"), mqttQoS, true, "offline").WaitTimeout(time.Second)
	o.client.Disconnect(mqttDisconnectWait)
}

func (o *MQTTOverlay) onConnect(client mqtt.Client) {
	o.logger.Info("mqtt connected")
	client.Publish(o.topic("availability"), mqttQoS, true, "online")

	token := client.Subscribe(o.topic("poller/set"), mqttQoS, o.handleCommand)
	if token.Wait() && token.Error() != nil {
		o.logger.Warn("failed to subscribe to commands", "topic", o.topic("poller/set"), "error", token.Error())
	}
}

func (o *MQTTOverlay) handleCommand(_ mqtt.Client, msg mqtt.Message) {
	payload := strings.ToUpper(strings.TrimSpace(string(msg.Payload())))

	var enabled bool
	switch payload {
	case "ON", "ENABLE", "TRUE", "1":
		enabled = true
	case "OFF", "DISABLE", "FALSE", "0":
		enabled = false
	default:
		o.logger.Warn("ignoring unknown poller command", "payload", payload)
		return
	}

	o.mu.Lock()
	fn := o.onCommand
	if fn == nil {
		o.pending = &enabled
	}
	o.mu.Unlock()

	o.logger.Debug("poller command received", "enabled", enabled)
	if fn != nil {
		fn(enabled)
	}
}

func (o *MQTTOverlay) topic(name string) string {
	return o.prefix + "/" + name
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Ensure MQTTOverlay implements OverlayController
var _ interfaces.OverlayController = (*MQTTOverlay)(nil)
