package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxTag struct{}

func TestHookChainOrder(t *testing.T) {
	var calls []string
	hook := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				calls = append(calls, "before-"+name)
				return context.WithValue(ctx, ctxTag{}, name), km, append(data, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				calls = append(calls, "after-"+name)
			},
		}
	}
	chain := NewHookChain(hook("a"), nil, hook("b"))

	ctx, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	require.NoError(t, err)
	chain.AfterHandle(ctx, "t", kafka.Message{}, data, nil)

	assert.Equal(t, "xab", string(data))
	assert.Equal(t, "b", ctx.Value(ctxTag{}))
	assert.Equal(t, []string{"before-a", "before-b", "after-b", "after-a"}, calls)
}

func TestHookChainRecoversPanic(t *testing.T) {
	chain := NewHookChain(HookFuncs{
		Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("bad hook")
		},
	})

	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	assert.ErrorContains(t, err, "bad hook")
}

func TestHeader(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: "request_id", Value: []byte("abc")}}}
	assert.Equal(t, "abc", Header(km, "request_id"))
	assert.Equal(t, "", Header(km, "missing"))
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 40; attempt++ {
		d := backoff(100*time.Millisecond, 2*time.Second, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer(nil, nil)
	assert.Error(t, err)

	_, err = NewProducer(nil)
	assert.Error(t, err)
}

func TestPermanentErrorIsMatchable(t *testing.T) {
	err := errors.Join(errors.New("decode"), ErrPermanent)
	assert.ErrorIs(t, err, ErrPermanent)
}
