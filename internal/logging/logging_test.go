package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	quiet, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	if quiet.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be off without verbose")
	}

	loud, err := New(true)
	if err != nil {
		t.Fatal(err)
	}
	if !loud.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be on with verbose")
	}
	Language(loud, "extract", "en").Debug("child logger works")
}
