package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogging(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	tests := []struct {
		name string
		mode string
	}{
		{name: "Test_InitLogging_development_OK", mode: "development"},
		{name: "Test_InitLogging_production_OK", mode: "production"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "staking.log")
			l, err := InitLogging(tt.mode, logFile)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Same(t, l, Logger)

			Logger.Info("hello", zap.String("mode", tt.mode))
			LogError("withdraw", errors.New("boom"))
			_ = Logger.Sync() // stdout may not support fsync

			data, err := os.ReadFile(logFile)
			require.NoError(t, err)
			assert.Contains(t, string(data), "hello")
			assert.Contains(t, string(data), "withdraw")
		})
	}
}

func Test_getEncoder(t *testing.T) {
	cfgUnknown := zap.NewProductionConfig()
	cfgUnknown.Encoding = ""

	assert.Panics(t, func() { getEncoder(cfgUnknown) })

	cfgJSON := zap.NewProductionConfig()
	assert.NotNil(t, getEncoder(cfgJSON))
}
