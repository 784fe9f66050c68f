package publisher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/energyviz/internal/config"
	"github.com/jgoulah/energyviz/pkg/models"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type message struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	sent         []message
	failAfter    int
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if c.failAfter > 0 && len(c.sent) >= c.failAfter {
		return &fakeToken{err: errors.New("broker gone")}
	}
	c.sent = append(c.sent, message{topic: topic, retained: retained, payload: payload.([]byte)})
	return &fakeToken{}
}

func (c *fakeClient) IsConnected() bool       { return !c.disconnected }
func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = true }

func day(s string) time.Time {
	d, _ := time.Parse(models.DayLayout, s)
	return d
}

func TestPublishDaily(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client, "energyviz")

	n, err := p.PublishDaily([]models.DailyUsage{
		{Date: day("2025-01-01"), KWh: 15, Collection: models.Consumption},
		{Date: day("2025-01-01"), KWh: 2, Collection: models.Generation},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, client.sent, 2)
	assert.Equal(t, "energyviz/consumption/daily", client.sent[0].topic)
	assert.Equal(t, "energyviz/generation/daily", client.sent[1].topic)
	assert.True(t, client.sent[0].retained)

	var payload DailyPayload
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &payload))
	assert.Equal(t, DailyPayload{Date: "2025-01-01", EnergyKWh: 15}, payload)

	p.Close()
	assert.True(t, client.disconnected)
}

func TestPublishDailyStopsAtFirstFailure(t *testing.T) {
	client := &fakeClient{failAfter: 1}
	p := NewWithClient(client, "home")

	n, err := p.PublishDaily([]models.DailyUsage{
		{Date: day("2025-01-01"), KWh: 1, Collection: models.Consumption},
		{Date: day("2025-01-02"), KWh: 1, Collection: models.Consumption},
		{Date: day("2025-01-03"), KWh: 1, Collection: models.Consumption},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRequiresEnabledBroker(t *testing.T) {
	_, err := New(&config.Config{})
	assert.Error(t, err)

	_, err = New(&config.Config{MQTT: config.MQTTConfig{Enabled: true}})
	assert.Error(t, err)
}

func TestLatestDays(t *testing.T) {
	rows := []models.DailyUsage{
		{Date: day("2025-01-03"), KWh: 3},
		{Date: day("2025-01-01"), KWh: 1},
		{Date: day("2025-01-02"), KWh: 2},
	}

	got := LatestDays(rows, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-02", got[0].DateString())
	assert.Equal(t, "2025-01-03", got[1].DateString())

	assert.Len(t, LatestDays(rows, 0), 3)
	assert.Len(t, LatestDays(rows, 5), 3)
	assert.Equal(t, "2025-01-03", rows[0].DateString())
}

func TestPublishDailyRetainsLatestDayLast(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client, "energyviz")

	rows := []models.DailyUsage{
		{Date: day("2025-01-05"), KWh: 5, Collection: models.Generation},
		{Date: day("2025-01-03"), KWh: 3, Collection: models.Generation},
		{Date: day("2025-01-04"), KWh: 4, Collection: models.Generation},
	}
	n, err := p.PublishDaily(LatestDays(rows, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var dates []string
	for _, m := range client.sent {
		assert.True(t, m.retained)
		var payload DailyPayload
		require.NoError(t, json.Unmarshal(m.payload, &payload))
		dates = append(dates, payload.Date)
	}
	assert.Equal(t, []string{"2025-01-04", "2025-01-05"}, dates)
}
