package publisher

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/energyviz/internal/config"
	"github.com/jgoulah/energyviz/pkg/models"
)

// Client is the part of mqtt.Client the publisher uses
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher sends daily totals to an MQTT broker
type Publisher struct {
	client      Client
	topicPrefix string
	timeout     time.Duration
}

// DailyPayload is the retained message for one day
type DailyPayload struct {
	Date      string  `json:"date"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// New connects to the configured broker
func New(cfg *config.Config) (*Publisher, error) {
	mqttCfg := cfg.MQTT
	if !mqttCfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if mqttCfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
	opts.SetClientID("energyviz")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if mqttCfg.Username != "" {
		opts.SetUsername(mqttCfg.Username)
	}
	if mqttCfg.Password != "" {
		opts.SetPassword(mqttCfg.Password)
	}

	// Create and connect client
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return NewWithClient(client, cfg.GetTopicPrefix()), nil
}

// NewWithClient wraps an already connected client
func NewWithClient(client Client, topicPrefix string) *Publisher {
	return &Publisher{client: client, topicPrefix: topicPrefix, timeout: 10 * time.Second}
}

// Topic returns the daily topic for a collection
func (p *Publisher) Topic(c models.Collection) string {
	return fmt.Sprintf("%s/%s/daily", p.topicPrefix, c)
}

// Publish sends one day's total as a retained message
func (p *Publisher) Publish(usage models.DailyUsage) error {
	body, err := json.Marshal(DailyPayload{Date: usage.DateString(), EnergyKWh: usage.KWh})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(p.Topic(usage.Collection), 1, true, body)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publishing %s %s: timed out", usage.Collection, usage.DateString())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing %s %s: %w", usage.Collection, usage.DateString(), err)
	}
	return nil
}

// LatestDays returns the most recent limit rows in date order. A limit of
// zero or less keeps every row.
func LatestDays(rows []models.DailyUsage, limit int) []models.DailyUsage {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b models.DailyUsage) int {
		return a.Date.Compare(b.Date)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	return sorted
}

// PublishDaily publishes rows oldest first, so the retained message left on
// each topic is its latest day. It returns how many were sent before the
// first failure.
func (p *Publisher) PublishDaily(rows []models.DailyUsage) (int, error) {
	for i, row := range LatestDays(rows, 0) {
		if err := p.Publish(row); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
