package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{name: "default", level: "", wantDebug: false, wantWarn: true},
		{name: "debug", level: "debug", wantDebug: true, wantWarn: true},
		{name: "error", level: "error", wantDebug: false, wantWarn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(tt.level, &buf)
			require.NoError(t, err)

			logger.Debug("debug line", zap.String("k", "v"))
			require.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))

			logger.Warn("warn line")
			require.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("WARN")))
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("chatty", &bytes.Buffer{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "chatty")
}
