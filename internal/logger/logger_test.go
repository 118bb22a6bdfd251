package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestInfo_Success_Warn_Error_NoPanic(t *testing.T) {
	// Redirect stdout so we don't spam the test output
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	Info("TAG", "message")
	Success("TAG", "message")
	Warn("TAG", "message")
	Error("TAG", "message")

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
}

func TestSetOutput_TagAndMessage(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Info("fetch", "downloading page")
	got := buf.String()
	if !strings.Contains(got, "[FETCH]") {
		t.Errorf("output %q missing tag [FETCH]", got)
	}
	if !strings.Contains(got, "downloading page") {
		t.Errorf("output %q missing message", got)
	}
}

func TestSetLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	defer SetLevel("info")

	SetLevel("info")
	Debug("TAG", "hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug line printed at info level: %q", buf.String())
	}

	SetLevel("debug")
	Debug("TAG", "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug line missing at debug level: %q", buf.String())
	}
}

func TestBanner_Version(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Banner("v1.0.1")
	if !strings.Contains(buf.String(), "Version: v1.0.1") {
		t.Errorf("banner missing version line: %q", buf.String())
	}

	buf.Reset()
	Banner("")
	if !strings.Contains(buf.String(), "Version: dev") {
		t.Errorf("empty version should print dev: %q", buf.String())
	}
}

func TestSectionAndStats(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Section("Run Summary")
	Stats("Commodities", 42)
	got := buf.String()
	if !strings.Contains(got, "Run Summary") || !strings.Contains(got, "Commodities:") || !strings.Contains(got, "42") {
		t.Errorf("section/stats output = %q", got)
	}
}
