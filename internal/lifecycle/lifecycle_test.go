package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/basel-ax/archaeo/internal/domain"
)

var messages = Messages{Generic: "mosaic.error", Permission: "error.permission"}

var imageA = domain.NewEncodedImage("image/png", []byte("A"))
var imageB = domain.NewEncodedImage("image/png", []byte("B"))

func succeedWith(p domain.Payload) Call {
	return func(ctx context.Context) (domain.Payload, error) { return p, nil }
}

func failWith(err error) Call {
	return func(ctx context.Context) (domain.Payload, error) { return domain.Payload{}, err }
}

func TestLifecycle_NoInputIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := New(messages, nil)
	called := false

	err := l.Run(context.Background(), "", func(ctx context.Context) (domain.Payload, error) {
		called = true
		return domain.Payload{}, nil
	})

	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, domain.Idle(), l.Outcome())
}

func TestLifecycle_Success(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := New(messages, nil)

	require.NoError(t, l.Run(context.Background(), imageA, succeedWith(domain.ImagePayload(imageB))))

	o := l.Outcome()
	assert.Equal(t, domain.StatusSuccess, o.Status)
	assert.Equal(t, imageB, o.Payload.Image)
	assert.Empty(t, o.ErrorKind)
}

func TestLifecycle_LoadingWhileCallRuns(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := New(messages, nil)
	release := make(chan struct{})

	done, err := l.Start(context.Background(), imageA, func(ctx context.Context) (domain.Payload, error) {
		<-release
		return domain.TextPayload("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLoading, l.Outcome().Status)

	_, err = l.Begin()
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	<-done
	assert.Equal(t, domain.StatusSuccess, l.Outcome().Status)
}

func TestLifecycle_FailureClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		permission bool
		key        string
	}{
		{"permission denied text", errors.New("rpc error: PERMISSION_DENIED"), true, "error.permission"},
		{"403 text", errors.New("403 Forbidden"), true, "error.permission"},
		{"lowercase permission", errors.New("caller does not have permission"), true, "error.permission"},
		{"network timeout", errors.New("network timeout"), false, "mosaic.error"},
		{"structured forbidden", &domain.AssistantError{Code: 403, Status: "PERMISSION_DENIED"}, true, "error.permission"},
		{"structured unauthenticated", &domain.AssistantError{Code: 401, Status: "UNAUTHENTICATED"}, true, "error.permission"},
		{"wrapped structured", fmt.Errorf("restore: %w", &domain.AssistantError{Code: 403}), true, "error.permission"},
		{"structured overrides text", &domain.AssistantError{Code: 500, Message: "permission cache 403 miss"}, false, "mosaic.error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(messages, nil)
			require.NoError(t, l.Run(context.Background(), imageA, failWith(tt.err)))

			o := l.Outcome()
			assert.Equal(t, domain.StatusFailure, o.Status)
			assert.Equal(t, tt.permission, o.PermissionDenied())
			assert.Equal(t, tt.key, o.MessageKey)
			assert.Equal(t, tt.err.Error(), o.Detail)
		})
	}
}

func TestLifecycle_ResetClearsResultAndError(t *testing.T) {
	l := New(messages, nil)
	require.NoError(t, l.Run(context.Background(), imageA, succeedWith(domain.ImagePayload(imageB))))
	l.Reset()
	assert.Equal(t, domain.Idle(), l.Outcome())

	require.NoError(t, l.Run(context.Background(), imageA, failWith(errors.New("boom"))))
	l.Reset()
	assert.Equal(t, domain.Idle(), l.Outcome())
}

func TestLifecycle_RetryAfterFailure(t *testing.T) {
	l := New(messages, nil)
	require.NoError(t, l.Run(context.Background(), imageA, failWith(errors.New("network timeout"))))

	require.NoError(t, l.Run(context.Background(), imageA, succeedWith(domain.TextPayload("ΑΘΗΝΑ"))))
	assert.Equal(t, domain.StatusSuccess, l.Outcome().Status)
}

func TestLifecycle_SuccessMustBeDismissed(t *testing.T) {
	l := New(messages, nil)
	require.NoError(t, l.Run(context.Background(), imageA, succeedWith(domain.TextPayload("x"))))

	_, err := l.Begin()
	assert.ErrorIs(t, err, ErrResultPending)
}

func TestLifecycle_ClearError(t *testing.T) {
	l := New(messages, nil)
	require.NoError(t, l.Run(context.Background(), imageA, failWith(errors.New("PERMISSION_DENIED"))))
	require.True(t, l.Outcome().PermissionDenied())

	l.ClearError()
	assert.Equal(t, domain.Idle(), l.Outcome())

	require.NoError(t, l.Run(context.Background(), imageA, succeedWith(domain.TextPayload("x"))))
	l.ClearError()
	assert.Equal(t, domain.StatusSuccess, l.Outcome().Status, "ClearError leaves a success alone")
}

func TestLifecycle_StaleResultDropped(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := New(messages, nil)
	release := make(chan struct{})

	done, err := l.Start(context.Background(), imageA, func(ctx context.Context) (domain.Payload, error) {
		<-release
		return domain.ImagePayload(imageA), nil
	})
	require.NoError(t, err)

	// a new image supersedes the pending request
	l.Reset()
	require.NoError(t, l.Run(context.Background(), imageB, succeedWith(domain.ImagePayload(imageB))))

	close(release)
	<-done
	l.Wait()

	o := l.Outcome()
	assert.Equal(t, domain.StatusSuccess, o.Status)
	assert.Equal(t, imageB, o.Payload.Image)
}

func TestLifecycle_SettleWithOldTicket(t *testing.T) {
	l := New(messages, nil)
	first, err := l.Begin()
	require.NoError(t, err)
	l.Reset()
	second, err := l.Begin()
	require.NoError(t, err)

	assert.False(t, l.Settle(first, domain.TextPayload("old"), nil))
	assert.Equal(t, domain.StatusLoading, l.Outcome().Status)
	assert.True(t, l.Settle(second, domain.TextPayload("new"), nil))
	assert.Equal(t, "new", l.Outcome().Payload.Text)
}

func TestLifecycle_CallerContextCancelDoesNotCancelCall(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := New(messages, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var callErr error
	done, err := l.Start(ctx, imageA, func(ctx context.Context) (domain.Payload, error) {
		callErr = ctx.Err()
		return domain.TextPayload("ok"), nil
	})
	require.NoError(t, err)
	cancel()
	<-done

	assert.NoError(t, callErr)
}

func TestClassify_Nil(t *testing.T) {
	assert.Empty(t, Classify(nil))
}
