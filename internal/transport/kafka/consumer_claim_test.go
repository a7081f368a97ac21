package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
	testlog "commute-route-service/internal/testutil"
)

type fakeSession struct {
	ctx context.Context

	mu     sync.Mutex
	marked int
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(*sarama.ConsumerMessage, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked++
}

func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "" }
func (s *fakeSession) GenerationID() int32                      { return 0 }

func (s *fakeSession) MarkedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked
}

type fakeClaim struct {
	ch chan *sarama.ConsumerMessage
}

func (c fakeClaim) Topic() string              { return "t" }
func (c fakeClaim) Partition() int32           { return 0 }
func (c fakeClaim) InitialOffset() int64       { return 0 }
func (c fakeClaim) HighWaterMarkOffset() int64 { return 0 }
func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage {
	return c.ch
}

type fakeDeadLetters struct {
	mu   sync.Mutex
	got  []DeadLetter
	fail error
}

func (f *fakeDeadLetters) Publish(_ context.Context, dl DeadLetter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.got = append(f.got, dl)
	return nil
}

func claimOf(values ...[]byte) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for i, v := range values {
		ch <- &sarama.ConsumerMessage{Key: []byte("42"), Value: v, Offset: int64(i)}
	}
	close(ch)
	return fakeClaim{ch: ch}
}

func validRequest(t *testing.T) []byte {
	t.Helper()
	dto := RouteRequestDTO{
		RequestID:       "req-1",
		UserID:          "42",
		Origin:          PointDTO{Lat: 37.5, Lon: 127.0},
		Destination:     PointDTO{Lat: 37.4, Lon: 127.1},
		ArriveBy:        "2024-05-01T09:00:00",
		FeedbackTimeSec: 300,
		ProducedAt:      "2024-05-01T07:55:00.123456",
	}
	b, err := json.Marshal(dto)
	require.NoError(t, err)
	return b
}

func newDeadLetteredVec() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "dead_lettered_test"}, []string{"reason"})
}

func TestConsumeClaim_BadJSON_DeadLettersAndMarks(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	dlq := &fakeDeadLetters{}
	vec := newDeadLetteredVec()
	c := &Consumer{
		logger: rec.Logger(),
		loc:    time.UTC,
		handler: func(context.Context, domain.RoutedRequest) error {
			t.Fatal("handler must not be called")
			return nil
		},
		deadLetter:   dlq,
		deadLettered: vec,
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf([]byte("not-json")))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())
	require.True(t, rec.Has("kafka bad message"))

	require.Len(t, dlq.got, 1)
	require.Equal(t, "42", dlq.got[0].Key)
	require.Equal(t, "invalid", dlq.got[0].Kind)
	require.Equal(t, 0, dlq.got[0].Attempts)
	require.Equal(t, 1.0, testutil.ToFloat64(vec.WithLabelValues("decode")))
}

func TestConsumeClaim_EmptyUserID_DeadLetters(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	dlq := &fakeDeadLetters{}
	calls := 0

	c := &Consumer{
		logger: rec.Logger(),
		loc:    time.UTC,
		handler: func(context.Context, domain.RoutedRequest) error {
			calls++
			return nil
		},
		deadLetter: dlq,
	}
	h := &groupHandler{c: c}

	b, _ := json.Marshal(RouteRequestDTO{UserID: "   ", ArriveBy: "2024-05-01T09:00:00"})

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(b))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())
	require.Equal(t, 0, calls)
	require.Len(t, dlq.got, 1)
	require.Contains(t, dlq.got[0].Error, "empty user_id")
}

func TestConsumeClaim_DeadLetterFailure_ReturnsWithoutMark(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	sentinel := errors.New("dlq down")
	c := &Consumer{
		logger:     rec.Logger(),
		loc:        time.UTC,
		handler:    noopHandler,
		deadLetter: &fakeDeadLetters{fail: sentinel},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf([]byte("{")))
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 0, sess.MarkedCount())
	require.True(t, rec.Has("kafka dead letter failed, will redeliver"))
}

func TestConsumeClaim_PermanentError_DeadLettersWithAttempts(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	dlq := &fakeDeadLetters{}
	vec := newDeadLetteredVec()

	c := &Consumer{
		logger: rec.Logger(),
		loc:    time.UTC,
		handler: func(context.Context, domain.RoutedRequest) error {
			return PermanentAfter(apperr.ErrProviderTimeout, 3)
		},
		deadLetter:   dlq,
		deadLettered: vec,
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(validRequest(t)))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())
	require.True(t, rec.Has("kafka handle failed, dead-lettering message"))

	require.Len(t, dlq.got, 1)
	dl := dlq.got[0]
	require.Equal(t, 3, dl.Attempts)
	require.Equal(t, "timeout", dl.Kind)
	require.JSONEq(t, string(validRequest(t)), string(dl.Request))
	require.Equal(t, 1.0, testutil.ToFloat64(vec.WithLabelValues("resolve")))
}

func TestConsumeClaim_TransientError_StopsWithoutMark(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	sentinel := errors.New("shutting down")
	calls := 0

	c := &Consumer{
		logger: rec.Logger(),
		loc:    time.UTC,
		handler: func(context.Context, domain.RoutedRequest) error {
			calls++
			return sentinel
		},
		deadLetter: &fakeDeadLetters{},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(validRequest(t), validRequest(t)))
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, calls)
	require.Equal(t, 0, sess.MarkedCount())
	require.True(t, rec.Has("kafka handle failed, will redeliver"))
}

func TestConsumeClaim_Success_MarksInOrder(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	rec := testlog.New()
	var seen []string

	c := &Consumer{
		logger: rec.Logger(),
		loc:    loc,
		handler: func(_ context.Context, r domain.RoutedRequest) error {
			seen = append(seen, r.RequestID)
			require.Equal(t, "42", r.UserID)
			require.Equal(t, 300, r.FeedbackTimeSec)
			require.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, loc), r.ArriveBy)
			return nil
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err = h.ConsumeClaim(sess, claimOf(validRequest(t), validRequest(t)))
	require.NoError(t, err)
	require.Equal(t, []string{"req-1", "req-1"}, seen)
	require.Equal(t, 2, sess.MarkedCount())
}
