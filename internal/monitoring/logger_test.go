package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("loaded %s", "thickness.json")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op logger that must not panic
	SetLogger(nil)
	Logf("test message")
}

func TestRedirect(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	restore := Redirect(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	Logf("density plot skipped: %s", "no plotter")
	restore()

	if len(lines) != 1 || lines[0] != "density plot skipped: no plotter" {
		t.Errorf("unexpected captured lines: %q", lines)
	}

	Logf("after restore")
	if len(lines) != 1 {
		t.Error("logger should be restored after calling restore")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
	restore := Redirect(nil)
	defer restore()
	Logf("test message: %s", "value")
}
