package tracer

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJaegerTracer(t *testing.T) {
	// UDP reporter 不需要 agent 在线
	tr, closer, err := NewJaegerTracer("murverse-test", "127.0.0.1:6831")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = closer.Close()
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
	})

	assert.Same(t, tr, opentracing.GlobalTracer())
	span := tr.StartSpan("probe")
	span.Finish()
}
