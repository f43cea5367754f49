package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_WritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel)

	log.Info("ConversionService", "conversion finished", map[string]interface{}{
		"entries": 6,
	})

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "ConversionService" {
		t.Errorf("Expected component 'ConversionService', got %v", line["component"])
	}
	if line["message"] != "conversion finished" {
		t.Errorf("Expected message 'conversion finished', got %v", line["message"])
	}
	if line["entries"] != float64(6) {
		t.Errorf("Expected entries 6, got %v", line["entries"])
	}
}

func TestZerologAdapter_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Error("MainController", errors.New("disk full"), nil)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["error"] != "disk full" {
		t.Errorf("Expected error 'disk full', got %v", line["error"])
	}
	if line["level"] != "error" {
		t.Errorf("Expected level 'error', got %v", line["level"])
	}
	if line["message"] != "disk full" {
		t.Errorf("Expected the error text as message without an action, got %v", line["message"])
	}
}

func TestZerologAdapter_ErrorUsesActionAsMessage(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Error("MainController", errors.New("disk full"), map[string]interface{}{
		ActionField: "Conversion failed",
		"output":    "logo.ico",
	})

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "Conversion failed" {
		t.Errorf("Expected message 'Conversion failed', got %v", line["message"])
	}
	if _, ok := line[ActionField]; ok {
		t.Errorf("Expected action to be used as the message only, got %v", line)
	}
	if line["error"] != "disk full" || line["output"] != "logo.ico" {
		t.Errorf("Expected error and output fields, got %v", line)
	}
}

func TestZerologAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("test", "hidden", nil)
	log.Info("test", "hidden", nil)

	if buf.Len() != 0 {
		t.Errorf("Expected no output below warn level, got %q", buf.String())
	}

	log.Warning("test", "shown", nil)
	if buf.Len() == 0 {
		t.Error("Expected warning to be written")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{input: "debug", want: zerolog.DebugLevel},
		{input: "", want: zerolog.InfoLevel},
		{input: "INFO", want: zerolog.InfoLevel},
		{input: "warning", want: zerolog.WarnLevel},
		{input: "error", want: zerolog.ErrorLevel},
		{input: "off", want: zerolog.Disabled},
		{input: "verbose", want: zerolog.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
