package logger

import (
	"bytes"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCombinedWriter_WritesToAll(t *testing.T) {
	var a, b bytes.Buffer
	cw := NewCombinedWriter(&a, &b)

	n, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())
}

func TestCombinedWriter_ContinuesAfterError(t *testing.T) {
	var a bytes.Buffer
	cw := NewCombinedWriter(failingWriter{}, &a)

	n, err := cw.Write([]byte("line"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 4, n)
	assert.Equal(t, "line", a.String())
}

func TestGetLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, log.WarnLevel, GetLevel("warning"))
	assert.Equal(t, log.ErrorLevel, GetLevel("error"))
	assert.Equal(t, log.InfoLevel, GetLevel("nonsense"))
	assert.Equal(t, log.InfoLevel, GetLevel(""))
}

func TestLogger_Fields(t *testing.T) {
	base, hook := test.NewNullLogger()
	l := New(base)

	l.Info("verification email sent", map[string]any{"email": "a@b.c"})
	l.Error("failed to send", map[string]any{"err": "timeout"})

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, log.InfoLevel, hook.Entries[0].Level)
	assert.Equal(t, "a@b.c", hook.Entries[0].Data["email"])
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "timeout", hook.LastEntry().Data["err"])
}
