// Package telemetry fans simulation frames out to renderers over MQTT.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/smart-intersection/internal/models"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

const defaultPublishTimeout = 2 * time.Second

// Publisher is the part of an MQTT client used to send frames.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher sends every frame as JSON to <topic>/<run_id>/frames.
type MQTTPublisher struct {
	client  Publisher
	topic   string
	qos     byte
	timeout time.Duration
	close   func()
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(client Publisher, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, timeout: defaultPublishTimeout}
}

// ConnectMQTT dials the broker and returns a publisher owning the connection.
func ConnectMQTT(broker, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}

	log.WithFields(log.Fields{"broker": broker, "client_id": clientID}).Info("Connected to MQTT broker")
	p := NewMQTTPublisher(client, topic)
	p.close = func() { client.Disconnect(250) }
	return p, nil
}

// Topic returns the frame topic for a run.
func (p *MQTTPublisher) Topic(runID string) string {
	return fmt.Sprintf("%s/%s/frames", p.topic, runID)
}

// PublishFrame implements sim.FrameSink. Frames are fire-and-forget at QoS 0;
// the call waits at most the publish timeout or until ctx is done.
func (p *MQTTPublisher) PublishFrame(ctx context.Context, frame models.Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	token := p.client.Publish(p.Topic(frame.RunID), p.qos, false, payload)
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to publish frame %d: %w", frame.Tick, err)
		}
		return nil
	case <-timer.C:
		return ErrPublishTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects the client if this publisher opened it.
func (p *MQTTPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}
