package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"clipbot/curation"
	"clipbot/logger"
	"clipbot/pipeline"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	errs []error
	reqs []pipeline.Request
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	f.reqs = append(f.reqs, req)
	if len(f.errs) == 0 {
		return &pipeline.Result{}, nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return nil, err
}

func TestRunHandler(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		body     string
		errs     []error
		wantMark bool
		wantErr  bool
		runs     int
	}{
		{"bad json", `{`, nil, true, false, 0},
		{"missing id", `{"profile":"short"}`, nil, true, false, 0},
		{"bad profile", `{"id":"a","profile":"square"}`, nil, true, false, 0},
		{"success", `{"id":"a","profile":"short","topic":"Oceanos"}`, nil, true, false, 1},
		{"failure not marked", `{"id":"a"}`, []error{errors.New("render failed")}, false, true, 1},
		{"cancelled curation marked", `{"id":"a"}`, []error{curation.ErrCancelled}, true, false, 1},
		{"busy retried", `{"id":"a"}`, []error{pipeline.ErrBusy, pipeline.ErrBusy}, true, false, 3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			runner := &fakeRunner{errs: c.errs}
			h := NewRunHandler(runner, logger.Nop(), time.Millisecond)

			mark, err := h.HandleMessage(ctx, []byte(c.body))
			assert.Equal(t, c.wantMark, mark)
			assert.Equal(t, c.wantErr, err != nil)
			assert.Len(t, runner.reqs, c.runs)
		})
	}
}

func TestRunHandlerPassesRequest(t *testing.T) {
	runner := &fakeRunner{}
	h := NewRunHandler(runner, logger.Nop(), time.Millisecond)

	_, err := h.HandleMessage(context.Background(), []byte(`{"id":"r1","profile":"long","topic":"Vulcões","curate":false,"skip_upload":true}`))
	require.NoError(t, err)
	require.Len(t, runner.reqs, 1)

	req := runner.reqs[0]
	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, "long", req.Profile)
	assert.Equal(t, "Vulcões", req.Topic)
	require.NotNil(t, req.Curate)
	assert.False(t, *req.Curate)
	assert.True(t, req.SkipUpload)
}

func TestBusyWaitStopsOnContext(t *testing.T) {
	runner := &fakeRunner{errs: []error{pipeline.ErrBusy}}
	h := NewRunHandler(runner, logger.Nop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mark, err := h.HandleMessage(ctx, []byte(`{"id":"a"}`))
	assert.False(t, mark)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProducerEnqueue(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var req GenerationRequest
		if err := json.Unmarshal(val, &req); err != nil {
			return err
		}
		if req.ID == "" || req.Topic != "Oceanos" || req.RequestedAt.IsZero() {
			return errors.New("unexpected request")
		}
		return nil
	})
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newProducer(sp, "requests", logger.Nop())
	defer p.Close()

	id, err := p.Enqueue(context.Background(), GenerationRequest{Topic: "Oceanos"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = p.Enqueue(context.Background(), GenerationRequest{ID: "fixed"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "a:9092,b:9092")
	assert.Equal(t, []string{"a:9092", "b:9092"}, Brokers())
	assert.Equal(t, "clipbot-video-requests", Topic())
	assert.Equal(t, "clipbot-workers", GroupID())
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

type markOK struct{}

func (markOK) HandleMessage(_ context.Context, message []byte) (bool, error) {
	if string(message) == "ok" {
		return true, nil
	}
	return false, errors.New("render failed")
}

func TestConsumeClaimMarksHandledMessages(t *testing.T) {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 10, Value: []byte("ok"), Key: []byte("a")}
	claim.messages <- &sarama.ConsumerMessage{Offset: 11, Value: []byte("bad"), Key: []byte("b")}
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	h := &consumerGroupHandler{messageHandler: markOK{}, ready: make(chan bool), log: logger.Nop()}

	require.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{10}, session.marked)
}
