package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/smart-intersection/internal/geometry"
	"github.com/ukydev/smart-intersection/internal/models"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	sent  []published
	token mqtt.Token
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, qos, retained, payload.([]byte)})
	return c.token
}

func sampleFrame() models.Frame {
	return models.Frame{
		RunID:      "run-1",
		Tick:       7,
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CloseCalls: 2,
		Vehicles: []models.VehicleFrame{
			{ID: 3, Position: geometry.Point{X: 810, Y: 420}, Angle: 180, Lane: models.LaneStraight},
		},
	}
}

func TestMQTTPublisher_PublishFrame(t *testing.T) {
	client := &fakeClient{token: completedToken(nil)}
	p := NewMQTTPublisher(client, "intersection")

	require.NoError(t, p.PublishFrame(context.Background(), sampleFrame()))
	require.Len(t, client.sent, 1)

	msg := client.sent[0]
	assert.Equal(t, "intersection/run-1/frames", msg.topic)
	assert.Zero(t, msg.qos)
	assert.False(t, msg.retained)

	var got models.Frame
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, uint64(7), got.Tick)
	assert.Equal(t, int64(2), got.CloseCalls)
	require.Len(t, got.Vehicles, 1)
	assert.Equal(t, 810.0, got.Vehicles[0].Position.X)
}

func TestMQTTPublisher_BrokerError(t *testing.T) {
	brokerErr := errors.New("not authorized")
	p := NewMQTTPublisher(&fakeClient{token: completedToken(brokerErr)}, "intersection")

	err := p.PublishFrame(context.Background(), sampleFrame())
	assert.ErrorIs(t, err, brokerErr)
}

func TestMQTTPublisher_Timeout(t *testing.T) {
	pending := &fakeToken{done: make(chan struct{})}
	p := NewMQTTPublisher(&fakeClient{token: pending}, "intersection")
	p.timeout = 5 * time.Millisecond

	err := p.PublishFrame(context.Background(), sampleFrame())
	assert.ErrorIs(t, err, ErrPublishTimeout)
}

func TestMQTTPublisher_ContextCancelled(t *testing.T) {
	pending := &fakeToken{done: make(chan struct{})}
	p := NewMQTTPublisher(&fakeClient{token: pending}, "intersection")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.PublishFrame(ctx, sampleFrame())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMQTTPublisher_CloseWithoutConnection(t *testing.T) {
	p := NewMQTTPublisher(&fakeClient{token: completedToken(nil)}, "intersection")
	assert.NotPanics(t, p.Close)
}
