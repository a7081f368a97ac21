package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestDeadLetterPublisher_Publish(t *testing.T) {
	t.Parallel()

	failedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      DeadLetter
		wantKey string
		check   func(t *testing.T, got DeadLetter)
	}{
		{
			name:    "valid json request",
			in:      DeadLetter{Key: "42", Request: json.RawMessage(`{"user_id":"42"}`), Error: "boom", Kind: "timeout", Attempts: 3},
			wantKey: "42",
			check: func(t *testing.T, got DeadLetter) {
				require.JSONEq(t, `{"user_id":"42"}`, string(got.Request))
				require.Empty(t, got.Raw)
				require.Equal(t, 3, got.Attempts)
				require.Equal(t, failedAt, got.FailedAt)
			},
		},
		{
			name: "undecodable payload kept raw",
			in:   DeadLetter{Request: json.RawMessage("not-json"), Error: "bad json", Kind: "invalid"},
			check: func(t *testing.T, got DeadLetter) {
				require.Nil(t, got.Request)
				require.Equal(t, "not-json", got.Raw)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sp := mocks.NewSyncProducer(t, nil)
			var got DeadLetter
			sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
				if msg.Topic != "route_request_dlq" {
					return fmt.Errorf("topic %q", msg.Topic)
				}
				if tc.wantKey == "" && msg.Key != nil {
					return fmt.Errorf("unexpected key")
				}
				if tc.wantKey != "" {
					k, _ := msg.Key.Encode()
					if string(k) != tc.wantKey {
						return fmt.Errorf("key %q", k)
					}
				}
				raw, err := msg.Value.Encode()
				if err != nil {
					return err
				}
				return json.Unmarshal(raw, &got)
			})

			d := NewDeadLetterPublisher(sp, "route_request_dlq")
			d.now = func() time.Time { return failedAt }

			require.NoError(t, d.Publish(context.Background(), tc.in))
			require.NoError(t, sp.Close())
			tc.check(t, got)
		})
	}
}

func TestDeadLetterPublisher_Failure(t *testing.T) {
	t.Parallel()

	sp := mocks.NewSyncProducer(t, nil)
	sentinel := errors.New("leader not available")
	sp.ExpectSendMessageAndFail(sentinel)

	d := NewDeadLetterPublisher(sp, "route_request_dlq")
	err := d.Publish(context.Background(), DeadLetter{Key: "1", Error: "x"})
	require.ErrorIs(t, err, sentinel)
	require.NoError(t, sp.Close())
}
