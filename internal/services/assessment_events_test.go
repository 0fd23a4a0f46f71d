package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"epif/internal/logging"
	"epif/internal/models"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	failWith  error
	closed    bool
}

func (c *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type mockEventSink struct {
	mock.Mock
}

func (m *mockEventSink) Submit(event AssessmentEvent) error {
	return m.Called(event).Error(0)
}

func TestEventPublisherDeliversQueuedEvents(t *testing.T) {
	ch := &fakeChannel{}
	p := NewEventPublisher(ch, "epif.assessments", 2, logging.Discard())

	assert.ErrorIs(t, p.Submit(AssessmentEvent{EventID: "early"}), ErrPublisherStopped)

	p.Start()
	p.Start()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Submit(AssessmentEvent{EventID: id, WinningClass: 1, WinningLabel: "Moderate risk"}))
	}
	p.Stop()
	p.Stop()
	assert.False(t, ch.closed)
	p.Close()

	require.Len(t, ch.published, 3)
	assert.True(t, ch.closed)
	assert.ErrorIs(t, p.Submit(AssessmentEvent{EventID: "late"}), ErrPublisherStopped)

	ids := map[string]bool{}
	for i, msg := range ch.published {
		assert.Equal(t, "epif.assessments", ch.keys[i])
		assert.Equal(t, "application/json", msg.ContentType)
		assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

		var event AssessmentEvent
		require.NoError(t, json.Unmarshal(msg.Body, &event))
		assert.Equal(t, msg.MessageId, event.EventID)
		assert.Equal(t, "Moderate risk", event.WinningLabel)
		ids[event.EventID] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, ids)
}

func TestEventPublisherRestart(t *testing.T) {
	ch := &fakeChannel{}
	p := NewEventPublisher(ch, "q", 2, logging.Discard())

	for round := 0; round < 3; round++ {
		p.Start()
		require.NoError(t, p.Submit(AssessmentEvent{EventID: "e"}))
		assert.NotPanics(t, p.Stop)
		assert.ErrorIs(t, p.Submit(AssessmentEvent{}), ErrPublisherStopped)
	}
	assert.Len(t, ch.published, 3)
	assert.False(t, ch.closed)

	p.Close()
	assert.True(t, ch.closed)
}

func TestEventPublisherQueueFull(t *testing.T) {
	p := NewEventPublisher(&fakeChannel{}, "q", 1, logging.Discard())
	p.running = true
	for i := 0; i < cap(p.events); i++ {
		require.NoError(t, p.Submit(AssessmentEvent{}))
	}
	assert.ErrorIs(t, p.Submit(AssessmentEvent{}), ErrEventQueueFull)
}

func TestEventPublisherPublishFailureIsLogged(t *testing.T) {
	ch := &fakeChannel{failWith: errors.New("channel closed")}
	p := NewEventPublisher(ch, "q", 1, logging.Discard())
	p.Start()
	require.NoError(t, p.Submit(AssessmentEvent{EventID: "x"}))
	p.Stop()
	assert.Empty(t, ch.published)
}

func TestAssessSubmitsEvent(t *testing.T) {
	f := newServiceFixture(t, false, false)
	f.client.On("PredictProbabilities", mock.Anything, mock.Anything).Return([]float64{0.1, 0.2, 0.7}, nil)

	sink := &mockEventSink{}
	sink.On("Submit", mock.MatchedBy(func(e AssessmentEvent) bool {
		return e.Falls == 2 && e.FallLocation == "Outdoor" && e.WinningClass == 2 &&
			e.EventID != "" && e.AssessmentID == nil && *e.PractitionerID == 4
	})).Return(nil).Once()
	f.service.WithEvents(sink)

	_, err := f.service.Assess(context.Background(), completeRequest(t, 2, models.LocationOutdoor), ptr(uint(4)))
	require.NoError(t, err)
	sink.AssertExpectations(t)
}

func TestAssessEventFailureDoesNotFailAssessment(t *testing.T) {
	f := newServiceFixture(t, false, false)
	f.client.On("PredictProbabilities", mock.Anything, mock.Anything).Return([]float64{0.1, 0.2, 0.7}, nil)

	sink := &mockEventSink{}
	sink.On("Submit", mock.Anything).Return(ErrEventQueueFull)
	f.service.WithEvents(sink)

	resp, err := f.service.Assess(context.Background(), completeRequest(t, 1, models.LocationIndoor), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Prediction.WinningClass)
}

func TestAssessInvalidRequestPublishesNothing(t *testing.T) {
	f := newServiceFixture(t, false, false)
	sink := &mockEventSink{}
	f.service.WithEvents(sink)

	_, err := f.service.Assess(context.Background(), models.AssessmentRequest{Falls: 9, FallLocation: models.LocationIndoor}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	sink.AssertNotCalled(t, "Submit", mock.Anything)
}
