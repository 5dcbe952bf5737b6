package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Log
		wantErr bool
	}{
		{
			name: "default level",
			cfg:  config.Log{},
		},
		{
			name: "development console",
			cfg:  config.Log{Level: "debug", Development: true},
		},
		{
			name:    "invalid level",
			cfg:     config.Log{Level: "loud"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hitview.log")
	logger, err := New(config.Log{Level: "info", File: path, MaxSize: 1})
	require.NoError(t, err)
	logger.Info("response captured")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "response captured")
}
