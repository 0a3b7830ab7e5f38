package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexframe/lexframe/internal/coreerr"
)

type pingArgs struct {
	Message string `json:"message"`
}

func registryWithPing(handler Handler, timeout time.Duration) *Registry {
	r := New()
	r.MustRegister(Definition{
		Name:        "ping",
		Description: "echoes a message",
		ArgsSample:  &pingArgs{},
		Handler:     handler,
		Timeout:     timeout,
	})
	return r
}

func TestRegistry_Subset(t *testing.T) {
	r := registryWithPing(func(ctx context.Context, tc *Context, args any) (any, error) {
		return "pong", nil
	}, 0)

	t.Run("known tool returns its declaration", func(t *testing.T) {
		decls, err := r.Subset([]string{"ping"})
		require.NoError(t, err)
		require.Len(t, decls, 1)
		assert.Equal(t, "ping", decls[0].Name)
		assert.NotNil(t, decls[0].Parameters)
	})

	t.Run("unknown tool is an error", func(t *testing.T) {
		_, err := r.Subset([]string{"missing"})
		require.Error(t, err)
		var cerr *coreerr.Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, coreerr.KindToolUnknown, cerr.Kind)
	})
}

func TestRegistry_Dispatch_Success(t *testing.T) {
	r := registryWithPing(func(ctx context.Context, tc *Context, args any) (any, error) {
		a := args.(*pingArgs)
		return map[string]string{"echo": a.Message}, nil
	}, 0)

	out := r.Dispatch(context.Background(), &Context{SessionID: "s1"}, "ping", map[string]any{"message": "hi"})
	require.Nil(t, out.Err)
	assert.JSONEq(t, `{"echo":"hi"}`, out.JSON())
}

func TestRegistry_Dispatch_UnknownTool(t *testing.T) {
	r := New()
	out := r.Dispatch(context.Background(), &Context{}, "nope", nil)
	require.NotNil(t, out.Err)
	assert.Equal(t, coreerr.KindToolUnknown, out.Err.Kind)
}

func TestRegistry_Dispatch_BadArguments(t *testing.T) {
	r := registryWithPing(func(ctx context.Context, tc *Context, args any) (any, error) {
		return nil, nil
	}, 0)

	out := r.Dispatch(context.Background(), &Context{}, "ping", map[string]any{"unexpected_field": true})
	require.NotNil(t, out.Err)
	assert.Equal(t, coreerr.KindToolBadArguments, out.Err.Kind)
}

func TestRegistry_Dispatch_HandlerError(t *testing.T) {
	r := registryWithPing(func(ctx context.Context, tc *Context, args any) (any, error) {
		return nil, errors.New("boom")
	}, 0)

	out := r.Dispatch(context.Background(), &Context{}, "ping", map[string]any{"message": "x"})
	require.NotNil(t, out.Err)
	assert.Equal(t, coreerr.KindToolHandlerError, out.Err.Kind)
}

func TestRegistry_Dispatch_HandlerPanicIsRecovered(t *testing.T) {
	r := registryWithPing(func(ctx context.Context, tc *Context, args any) (any, error) {
		panic("unexpected")
	}, 0)

	out := r.Dispatch(context.Background(), &Context{}, "ping", map[string]any{"message": "x"})
	require.NotNil(t, out.Err)
	assert.Equal(t, coreerr.KindToolHandlerError, out.Err.Kind)
}

func TestRegistry_Dispatch_Timeout(t *testing.T) {
	r := registryWithPing(func(ctx context.Context, tc *Context, args any) (any, error) {
		select {
		case <-time.After(200 * time.Millisecond):
			return "too slow", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, 10*time.Millisecond)

	out := r.Dispatch(context.Background(), &Context{}, "ping", map[string]any{"message": "x"})
	require.NotNil(t, out.Err)
	assert.Equal(t, coreerr.KindToolTimeout, out.Err.Kind)
}

func TestOutcome_JSON_ErrorNeverLeaksRawMessage(t *testing.T) {
	out := Outcome{Err: coreerr.New("tool.Registry", "Dispatch", coreerr.KindToolHandlerError, "internal detail nobody should see", errors.New("raw"))}
	assert.NotContains(t, out.JSON(), "internal detail")
	assert.Contains(t, out.JSON(), "error")
}
