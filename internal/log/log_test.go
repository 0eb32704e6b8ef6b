package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logrus.Level
		wantErr bool
	}{
		{"", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"quiet", logrus.PanicLevel, false},
		{"chatty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipelineStructured(t *testing.T) {
	var buf bytes.Buffer
	Set(New(Config{Level: logrus.InfoLevel, Structured: true, Output: &buf}))
	t.Cleanup(func() { Set(nil) })

	Pipeline(logrus.Fields{"package": "left-pad"}).Log("Versions to deprecate", []string{"1.0.0", "1.1.0"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Versions to deprecate", line["msg"])
	assert.Equal(t, "left-pad", line["package"])
	assert.Equal(t, []any{"1.0.0", "1.1.0"}, line["details"])
}

func TestPipelineWithoutDetails(t *testing.T) {
	var buf bytes.Buffer
	Set(New(Config{Level: logrus.InfoLevel, Structured: true, Output: &buf}))
	t.Cleanup(func() { Set(nil) })

	Pipeline(nil).Log("No version to deprecate")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "No version to deprecate", line["msg"])
	assert.NotContains(t, line, "details")
}

func TestDefaultDiscards(t *testing.T) {
	Set(nil)
	assert.Equal(t, logrus.InfoLevel, Get().GetLevel())
	Infof("dropped %d", 1)
}
