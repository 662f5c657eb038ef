package output

import (
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"

	"github.com/hbus/ppsmon/hardware/pps"
	"github.com/hbus/ppsmon/log2"
)

type MqttConfig struct {
	Broker       string
	ClientId     string
	Password     string
	TopicPrefix  string
	KeepaliveSec int
}

// Mqtt publishes each known reading's formatted value to
// `<prefix>/<label-slug>`, retained, QoS 0. Payloads are plain text so any
// dashboard can subscribe without a schema.
type Mqtt struct {
	log    *log2.Log
	c      mqtt.Client
	prefix string
}

func NewMqtt(config MqttConfig, log *log2.Log) (*Mqtt, error) {
	m := &Mqtt{
		log:    log,
		prefix: config.TopicPrefix,
	}
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log

	clientId := config.ClientId
	if clientId == "" {
		clientId = "ppsmon"
	}
	keepAlive := time.Duration(config.KeepaliveSec) * time.Second
	if keepAlive == 0 {
		keepAlive = 60 * time.Second
	}
	credFun := func() (string, string) { return clientId, config.Password }
	opts := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(clientId).
		SetCredentialsProvider(credFun).
		SetKeepAlive(keepAlive).
		SetPingTimeout(keepAlive / 2).
		SetOrderMatters(false).
		SetConnectRetryInterval(keepAlive / 2).
		SetConnectRetry(true)
	m.c = mqtt.NewClient(opts)
	token := m.c.Connect()
	if token.Error() != nil {
		return nil, errors.Annotate(token.Error(), "mqtt connect")
	}
	return m, nil
}

func (m *Mqtt) Reading(r *pps.Reading) error {
	if !r.Known {
		return nil
	}
	topic := fmt.Sprintf("%s/%s", m.prefix, slug(r.Label))
	token := m.c.Publish(topic, 0, true, r.Value)
	// network may be slow or absent; paho buffers, delivery is best-effort
	if token.Error() != nil {
		return errors.Annotatef(token.Error(), "mqtt publish topic=%s", topic)
	}
	return nil
}

func (m *Mqtt) Record(rec pps.Record) error { return nil }

func (m *Mqtt) Close() error {
	m.c.Disconnect(250)
	return nil
}

func slug(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}
