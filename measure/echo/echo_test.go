package echo

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-delay/dsp/effects/analogdelay"
	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/tempo"
	"github.com/cwbudde/algo-delay/internal/testutil"
)

const dbTolerance = 0.5

func newEngine(t *testing.T, sampleRate, delayMs, feedback, mix float64) (*analogdelay.Engine, *param.Store) {
	t.Helper()
	store := param.NewStore()
	store.Set(param.DelayTimeMs, delayMs)
	store.Set(param.Feedback, feedback)
	store.Set(param.Mix, mix)

	e, err := analogdelay.New(store, analogdelay.WithMaxChannels(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Prepare(sampleRate, 256); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return e, store
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(nil, 10, tempo.None); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("Render(nil) error = %v, want ErrNotPrepared", err)
	}

	unprepared, err := analogdelay.New(param.NewStore())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Render(unprepared, 10, tempo.None); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("Render(unprepared) error = %v, want ErrNotPrepared", err)
	}

	e, _ := newEngine(t, 1000, 10, 0, 1)
	if _, err := Render(e, 0, tempo.None); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Render(0 frames) error = %v, want ErrEmptyResponse", err)
	}
}

func TestRenderIsIndependentOfHistory(t *testing.T) {
	e, _ := newEngine(t, 1000, 20, 0.7, 0.5)

	first, err := Render(e, 300, tempo.None)
	if err != nil {
		t.Fatal(err)
	}
	e.Process([][]float64{testutil.DeterministicNoise(1, 1, 500)}, tempo.None)
	second, err := Render(e, 300, tempo.None)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

func TestAnalyzeSingleEcho(t *testing.T) {
	e, _ := newEngine(t, 1000, 100, 0, 0.5)
	ir, err := Render(e, 1000, tempo.None)
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewAnalyzer(1000).Analyze(ir)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if r.DirectLevel != 0.5 {
		t.Fatalf("DirectLevel = %v, want 0.5", r.DirectLevel)
	}
	if len(r.Echoes) != 1 {
		t.Fatalf("len(Echoes) = %d, want 1: %+v", len(r.Echoes), r.Echoes)
	}

	tap := r.Echoes[0]
	if tap.Index != 100 || tap.TimeMs != 100 || tap.Level != 0.5 {
		t.Fatalf("echo = %+v, want index 100, 100 ms, level 0.5", tap)
	}
	if want := 20 * math.Log10(0.5); math.Abs(tap.LevelDB-want) > dbTolerance {
		t.Fatalf("LevelDB = %v, want %v", tap.LevelDB, want)
	}
	if r.PeriodMs != 100 {
		t.Fatalf("PeriodMs = %v, want 100", r.PeriodMs)
	}
}

func TestAnalyzeFeedbackRepeats(t *testing.T) {
	e, _ := newEngine(t, 1000, 100, 0.5, 1)
	ir, err := Render(e, 2000, tempo.None)
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewAnalyzer(1000).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}

	if len(r.Echoes) < 3 {
		t.Fatalf("len(Echoes) = %d, want >= 3", len(r.Echoes))
	}
	if r.Echoes[0].Index != 100 || r.Echoes[1].Index != 200 {
		t.Fatalf("first echoes at %d, %d; want 100, 200", r.Echoes[0].Index, r.Echoes[1].Index)
	}
	for i := 1; i < len(r.Echoes); i++ {
		if r.Echoes[i].Level >= r.Echoes[i-1].Level {
			t.Fatalf("echo %d level %v not below %v", i, r.Echoes[i].Level, r.Echoes[i-1].Level)
		}
	}
	if r.DecayPerRepeatDB >= 0 {
		t.Fatalf("DecayPerRepeatDB = %v, want < 0", r.DecayPerRepeatDB)
	}
	if r.DirectLevel != 0 {
		t.Fatalf("DirectLevel = %v, want 0 at full mix", r.DirectLevel)
	}
}

func TestAnalyzeTempoSyncedPeriod(t *testing.T) {
	e, store := newEngine(t, 1000, 400, 0, 1)
	store.SetBool(param.SyncEnabled, true)
	store.Set(param.SyncDivision, float64(tempo.Sixteenth))

	ir, err := Render(e, 1000, tempo.BPM(120))
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewAnalyzer(1000).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Echoes) != 1 || r.Echoes[0].Index != 125 {
		t.Fatalf("echoes = %+v, want single echo at 125", r.Echoes)
	}
}

func TestFeedbackDampingLowersCentroid(t *testing.T) {
	const sampleRate = 8000.0

	clean, _ := newEngine(t, sampleRate, 10, 0, 1)
	irClean, err := Render(clean, 8192, tempo.None)
	if err != nil {
		t.Fatal(err)
	}

	damped, _ := newEngine(t, sampleRate, 10, 0.9, 1)
	irDamped, err := Render(damped, 8192, tempo.None)
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnalyzer(sampleRate)
	rClean, err := a.Analyze(irClean)
	if err != nil {
		t.Fatal(err)
	}
	rDamped, err := a.Analyze(irDamped)
	if err != nil {
		t.Fatal(err)
	}

	// A lone impulse has a flat spectrum: centroid at a quarter of the rate.
	if math.Abs(rClean.CentroidHz-sampleRate/4) > 10 {
		t.Fatalf("clean centroid = %v Hz, want ~%v", rClean.CentroidHz, sampleRate/4)
	}
	if rDamped.CentroidHz >= rClean.CentroidHz {
		t.Fatalf("damped centroid %v Hz not below clean %v Hz", rDamped.CentroidHz, rClean.CentroidHz)
	}
}

func TestSpectrumShape(t *testing.T) {
	ir := testutil.Impulse(1000, 3)
	r, err := NewAnalyzer(48000).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}

	if len(r.Spectrum) != 513 {
		t.Fatalf("len(Spectrum) = %d, want 513", len(r.Spectrum))
	}
	if r.BinHz != 48000.0/1024 {
		t.Fatalf("BinHz = %v, want %v", r.BinHz, 48000.0/1024)
	}
	peak := 0.0
	for _, m := range r.Spectrum {
		peak = math.Max(peak, m)
	}
	if math.Abs(peak-1) > 1e-12 {
		t.Fatalf("spectrum peak = %v, want 1", peak)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	r, err := NewAnalyzer(48000).Analyze(make([]float64, 64))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(r.Echoes) != 0 || r.CentroidHz != 0 || r.PeriodMs != 0 {
		t.Fatalf("silent report = %+v", r)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := NewAnalyzer(48000).Analyze(nil); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Analyze(nil) error = %v", err)
	}
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewAnalyzer(sr).Analyze([]float64{1}); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("Analyze(sr=%v) error = %v", sr, err)
		}
	}
}

func TestNearbyPeaksMerge(t *testing.T) {
	ir := make([]float64, 100)
	ir[10] = 0.5
	ir[12] = 0.8
	ir[50] = 0.4

	a := NewAnalyzer(1000)
	a.MinSpacingMs = 5
	r, err := a.Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Echoes) != 2 || r.Echoes[0].Index != 12 || r.Echoes[1].Index != 50 {
		t.Fatalf("echoes = %+v, want peaks at 12 and 50", r.Echoes)
	}
}

func TestLevelDB(t *testing.T) {
	if got := levelDB(0); got != silenceDB {
		t.Fatalf("levelDB(0) = %v, want %v", got, silenceDB)
	}
	if got := levelDB(1); math.Abs(got) > dbTolerance {
		t.Fatalf("levelDB(1) = %v, want 0", got)
	}
	if got := levelDB(0.1); math.Abs(got+20) > dbTolerance {
		t.Fatalf("levelDB(0.1) = %v, want -20", got)
	}
}
