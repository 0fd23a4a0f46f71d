package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"epif/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var (
	ErrPublisherStopped = errors.New("event publisher is not running")
	ErrEventQueueFull   = errors.New("event queue is full")
)

// AssessmentEvent is published for every completed assessment so downstream
// consumers (audit, analytics) can follow the profiling activity.
type AssessmentEvent struct {
	EventID        string             `json:"event_id"`
	AssessmentID   *uuid.UUID         `json:"assessment_id,omitempty"`
	PractitionerID *uint              `json:"practitioner_id,omitempty"`
	Falls          int                `json:"falls"`
	FallLocation   string             `json:"fall_location"`
	WinningClass   int                `json:"winning_class"`
	WinningLabel   string             `json:"winning_label"`
	Probabilities  []float64          `json:"probabilities"`
	CloseClasses   []int              `json:"close_classes"`
	Features       map[string]float64 `json:"features"`
	Timestamp      time.Time          `json:"timestamp"`
}

// EventSink accepts assessment events without blocking the request.
type EventSink interface {
	Submit(event AssessmentEvent) error
}

func newAssessmentEvent(req models.AssessmentRequest, resp *models.AssessmentResponse, practitionerID *uint, now time.Time) AssessmentEvent {
	return AssessmentEvent{
		EventID:        uuid.NewString(),
		AssessmentID:   resp.AssessmentID,
		PractitionerID: practitionerID,
		Falls:          req.Falls,
		FallLocation:   req.FallLocation.String(),
		WinningClass:   resp.Prediction.WinningClass,
		WinningLabel:   resp.Prediction.WinningLabel,
		Probabilities:  resp.Prediction.Probabilities,
		CloseClasses:   resp.Prediction.CloseClasses,
		Features:       resp.Features,
		Timestamp:      now.UTC(),
	}
}

type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventPublisher delivers assessment events to a durable AMQP queue from a
// small pool of workers.
type EventPublisher struct {
	channel amqpChannel
	conn    io.Closer
	queue   string

	events      chan AssessmentEvent
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	mu          sync.RWMutex

	logger *logrus.Logger
}

// DialEventPublisher connects to the broker and declares the queue.
func DialEventPublisher(url, queue string, workerCount int, logger *logrus.Logger) (*EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	p := NewEventPublisher(ch, queue, workerCount, logger)
	p.conn = conn
	return p, nil
}

// NewEventPublisher publishes on an already open channel.
func NewEventPublisher(channel amqpChannel, queue string, workerCount int, logger *logrus.Logger) *EventPublisher {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &EventPublisher{
		channel:     channel,
		queue:       queue,
		events:      make(chan AssessmentEvent, 100),
		workerCount: workerCount,
		logger:      logger,
	}
}

func (p *EventPublisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(p.stopChan)
	}
}

// Stop publishes the events still queued and waits for the workers. A
// stopped publisher can be started again.
func (p *EventPublisher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()
}

// Close stops the publisher and releases the channel and the connection.
// The publisher cannot be restarted afterwards.
func (p *EventPublisher) Close() {
	p.Stop()

	if err := p.channel.Close(); err != nil {
		p.logger.WithError(err).Warn("Failed to close event channel")
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.WithError(err).Warn("Failed to close broker connection")
		}
	}
}

// Submit queues an event. It never blocks; a full queue drops the event.
func (p *EventPublisher) Submit(event AssessmentEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrPublisherStopped
	}

	select {
	case p.events <- event:
		return nil
	default:
		return ErrEventQueueFull
	}
}

func (p *EventPublisher) worker(stop <-chan struct{}) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.events:
			p.publish(event)
		case <-stop:
			for {
				select {
				case event := <-p.events:
					p.publish(event)
				default:
					return
				}
			}
		}
	}
}

func (p *EventPublisher) publish(event AssessmentEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to encode assessment event")
		return
	}

	err = p.channel.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.Timestamp,
		Body:         body,
	})
	if err != nil {
		p.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to publish assessment event")
		return
	}
	p.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"queue":    p.queue,
	}).Debug("Assessment event published")
}
