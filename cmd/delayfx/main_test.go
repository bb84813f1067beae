package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

func runCmd(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUsage(t *testing.T) {
	code, _, stderr := runCmd(t)
	if code != 2 || !strings.Contains(stderr, "Commands:") {
		t.Fatalf("run() = %d, stderr %q", code, stderr)
	}

	code, _, stderr = runCmd(t, "bogus")
	if code != 2 || !strings.Contains(stderr, `unknown command "bogus"`) {
		t.Fatalf("run(bogus) = %d, stderr %q", code, stderr)
	}

	if code, _, _ := runCmd(t, "help"); code != 0 {
		t.Fatalf("run(help) = %d, want 0", code)
	}
	if code, _, _ := runCmd(t, "render", "-h"); code != 0 {
		t.Fatalf("run(render -h) = %d, want 0", code)
	}
	if code, _, _ := runCmd(t, "render", "-nope"); code != 2 {
		t.Fatalf("run(render -nope) = %d, want 2", code)
	}
}

func TestParams(t *testing.T) {
	code, stdout, stderr := runCmd(t, "params")
	if code != 0 {
		t.Fatalf("run(params) = %d: %s", code, stderr)
	}
	for _, want := range []string{"delayTime", "2000.0 ms", "feedback", "95.0 %", "1/16T"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("params output missing %q:\n%s", want, stdout)
		}
	}
}

func TestPresetSaveAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slap.adly")

	code, _, stderr := runCmd(t, "preset", "-save", path, "-time", "90", "-mix", "0.3", "-sync", "-division", "1/8t")
	if code != 0 {
		t.Fatalf("preset -save = %d: %s", code, stderr)
	}

	code, stdout, stderr := runCmd(t, "preset", "-show", path)
	if code != 0 {
		t.Fatalf("preset -show = %d: %s", code, stderr)
	}
	for _, want := range []string{"90.0 ms", "30.0 %", "On", "1/8T"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("preset output missing %q:\n%s", want, stdout)
		}
	}

	if code, _, _ := runCmd(t, "preset"); code != 2 {
		t.Fatalf("preset without mode = %d, want 2", code)
	}
}

func TestPresetRejectsBadDivision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.adly")
	code, _, stderr := runCmd(t, "preset", "-save", path, "-division", "3/7")
	if code != 1 || !strings.Contains(stderr, "unknown sync division") {
		t.Fatalf("run() = %d, stderr %q", code, stderr)
	}
}

func TestIR(t *testing.T) {
	code, stdout, stderr := runCmd(t, "ir", "-rate", "8000", "-seconds", "1", "-time", "125", "-feedback", "0.5", "-mix", "1")
	if code != 0 {
		t.Fatalf("run(ir) = %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "delay       125.000 ms") {
		t.Fatalf("ir output missing delay:\n%s", stdout)
	}
	if !strings.Contains(stdout, "1000\t") && !strings.Contains(stdout, " 1000 ") {
		t.Fatalf("ir output missing first echo at sample 1000:\n%s", stdout)
	}
}

func TestIRUsesPresetAndTempo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.adly")
	if code, _, stderr := runCmd(t, "preset", "-save", path, "-sync", "-division", "1/8"); code != 0 {
		t.Fatalf("preset -save: %s", stderr)
	}

	code, stdout, stderr := runCmd(t, "ir", "-preset", path, "-bpm", "100", "-rate", "1000", "-seconds", "1")
	if code != 0 {
		t.Fatalf("run(ir) = %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "delay       300.000 ms") {
		t.Fatalf("synced delay not applied:\n%s", stdout)
	}
}

type framesStreamer struct {
	frames [][2]float64
	pos    int
}

func (s *framesStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

func (s *framesStreamer) Err() error { return nil }

func TestRender(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "dry.wav")
	out := filepath.Join(dir, "wet.wav")

	f, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	frames := make([][2]float64, 400)
	frames[0] = [2]float64{0.5, 0.5}
	format := beep.Format{SampleRate: 4000, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, &framesStreamer{frames: frames}, format); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCmd(t, "render", "-in", in, "-out", out, "-time", "25", "-tail", "100ms")
	if code != 0 {
		t.Fatalf("run(render) = %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "4000 Hz, delay 25.0 ms") {
		t.Fatalf("render summary = %q", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	s, gotFormat, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if gotFormat != format {
		t.Fatalf("format = %+v, want %+v", gotFormat, format)
	}
	if s.Len() != 800 {
		t.Fatalf("output frames = %d, want 800", s.Len())
	}
}

func TestRenderRequiresFiles(t *testing.T) {
	if code, _, _ := runCmd(t, "render", "-in", "x.wav"); code != 2 {
		t.Fatalf("render without -out = %d, want 2", code)
	}
	code, _, stderr := runCmd(t, "render", "-in", filepath.Join(t.TempDir(), "missing.wav"), "-out", filepath.Join(t.TempDir(), "o.wav"))
	if code != 1 || stderr == "" {
		t.Fatalf("render with missing input = %d, %q", code, stderr)
	}
}

func TestPlayRequiresInput(t *testing.T) {
	if code, _, stderr := runCmd(t, "play"); code != 2 || !strings.Contains(stderr, "Usage: delayfx play") {
		t.Fatalf("play without -in = %d, %q", code, stderr)
	}
}
