package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newTestZapLogger(buf *bytes.Buffer, level LogLevel, slow time.Duration) Interface {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return NewZapLogger(zap.New(core), Config{LogLevel: level, SlowThreshold: slow})
}

func TestZapLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		log      func(Interface)
		expected string
	}{
		{"info at info", Info, func(l Interface) { l.Info(context.Background(), "loaded %d records", 3) }, "loaded 3 records"},
		{"warn at warn", Warn, func(l Interface) { l.Warn(context.Background(), "duplicate %s", "tag") }, "duplicate tag"},
		{"error at error", Error, func(l Interface) { l.Error(context.Background(), "boom") }, "boom"},
		{"debug at debug", Debug, func(l Interface) { l.Debug(context.Background(), "ctx %v", "keys") }, "ctx keys"},
		{"info suppressed at warn", Warn, func(l Interface) { l.Info(context.Background(), "hidden") }, ""},
		{"error suppressed at silent", Silent, func(l Interface) { l.Error(context.Background(), "hidden") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newTestZapLogger(&buf, tt.level, 0))
			if tt.expected == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.expected)
			assert.Contains(t, buf.String(), "zap_test.go")
		})
	}
}

func TestZapLogger_Trace(t *testing.T) {
	fc := func() (string, int64) { return "load Post", 25 }

	t.Run("info", func(t *testing.T) {
		var buf bytes.Buffer
		newTestZapLogger(&buf, Info, 0).Trace(context.Background(), time.Now(), fc, nil)
		out := buf.String()
		assert.Contains(t, out, "phase finished")
		assert.Contains(t, out, `"phase":"load Post"`)
		assert.Contains(t, out, `"items":25`)
		assert.Contains(t, out, "duration")
	})

	t.Run("uncounted", func(t *testing.T) {
		var buf bytes.Buffer
		newTestZapLogger(&buf, Info, 0).Trace(context.Background(), time.Now(), func() (string, int64) { return "write", -1 }, nil)
		assert.NotContains(t, buf.String(), "items")
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		newTestZapLogger(&buf, Error, 0).Trace(context.Background(), time.Now(), fc, errors.New("bad data"))
		assert.Contains(t, buf.String(), "phase failed")
		assert.Contains(t, buf.String(), "bad data")
	})

	t.Run("slow", func(t *testing.T) {
		var buf bytes.Buffer
		newTestZapLogger(&buf, Warn, time.Millisecond).Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
		assert.Contains(t, buf.String(), "SLOW phase finished")
		assert.Contains(t, buf.String(), "slow_threshold")
	})

	t.Run("quiet at warn", func(t *testing.T) {
		var buf bytes.Buffer
		newTestZapLogger(&buf, Warn, 0).Trace(context.Background(), time.Now(), fc, nil)
		assert.Empty(t, buf.String())
	})

	t.Run("silent", func(t *testing.T) {
		var buf bytes.Buffer
		newTestZapLogger(&buf, Silent, 0).Trace(context.Background(), time.Now(), fc, errors.New("x"))
		assert.Empty(t, buf.String())
	})
}

func TestZapLogger_LogMode(t *testing.T) {
	var buf bytes.Buffer
	base := newTestZapLogger(&buf, Warn, 0)
	verbose := base.LogMode(Info)

	base.Info(context.Background(), "from base")
	verbose.Info(context.Background(), "from verbose")

	assert.False(t, strings.Contains(buf.String(), "from base"))
	assert.True(t, strings.Contains(buf.String(), "from verbose"))
	assert.Equal(t, Warn, base.(*ZapLogger).LogLevel)
}

func TestZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, ZapLevel(Error))
	assert.Equal(t, zapcore.DebugLevel, ZapLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, ZapLevel(LogLevel(42)))
}
