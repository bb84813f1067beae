package echo

import (
	"errors"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	approx "github.com/meko-christian/algo-approx"

	"github.com/cwbudde/algo-delay/dsp/effects/analogdelay"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

// Errors returned by rendering and analysis.
var (
	ErrEmptyResponse     = errors.New("echo: impulse response is empty")
	ErrInvalidSampleRate = errors.New("echo: sample rate must be positive")
	ErrNotPrepared       = errors.New("echo: engine is not prepared")
)

const (
	defaultThresholdDB  = -60.0
	defaultMinSpacingMs = 1.0
	defaultRenderBlock  = 512
	maxFFTSize          = 1 << 22
	ln10                = 2.302585092994046
	silenceDB           = -200.0
)

// Tap is one detected peak of the response.
type Tap struct {
	Index   int     // sample index
	TimeMs  float64 // position in milliseconds
	Level   float64 // absolute amplitude
	LevelDB float64 // 20*log10(Level)
}

// Report holds the echo analysis of an impulse response.
type Report struct {
	SampleRate       float64
	DirectLevel      float64   // |ir[0]|, the dry part of the response
	Echoes           []Tap     // peaks after the first sample, in time order
	PeriodMs         float64   // mean spacing between consecutive echoes
	DecayPerRepeatDB float64   // mean level change between consecutive echoes
	Spectrum         []float64 // normalized magnitude, bins 0..fftSize/2
	BinHz            float64   // frequency spacing of Spectrum
	CentroidHz       float64   // magnitude-weighted mean frequency
}

// Render feeds a unit impulse through channel 0 of a prepared engine and
// returns frames samples of its output. The engine is reset first, so the
// response does not depend on earlier audio.
func Render(e *analogdelay.Engine, frames int, t tempo.Tempo) ([]float64, error) {
	if e == nil || !e.Prepared() {
		return nil, ErrNotPrepared
	}
	if frames <= 0 {
		return nil, ErrEmptyResponse
	}

	block := e.MaxBlockSize()
	if block <= 0 {
		block = defaultRenderBlock
	}

	e.Reset()
	ir := make([]float64, frames)
	ir[0] = 1

	for start := 0; start < frames; start += block {
		end := min(start+block, frames)
		e.Process([][]float64{ir[start:end]}, t)
	}
	return ir, nil
}

// Analyzer detects echo taps and spectral balance of impulse responses.
type Analyzer struct {
	SampleRate   float64
	ThresholdDB  float64 // taps below peak+ThresholdDB are ignored
	MinSpacingMs float64 // peaks closer than this are merged
}

// NewAnalyzer creates an analyzer with a -60 dB tap threshold and 1 ms peak
// spacing.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{
		SampleRate:   sampleRate,
		ThresholdDB:  defaultThresholdDB,
		MinSpacingMs: defaultMinSpacingMs,
	}
}

// Analyze computes the echo report for ir.
func (a *Analyzer) Analyze(ir []float64) (Report, error) {
	if len(ir) == 0 {
		return Report{}, ErrEmptyResponse
	}
	if a.SampleRate <= 0 || math.IsNaN(a.SampleRate) || math.IsInf(a.SampleRate, 0) {
		return Report{}, ErrInvalidSampleRate
	}

	r := Report{
		SampleRate:  a.SampleRate,
		DirectLevel: math.Abs(ir[0]),
	}

	r.Echoes = a.findEchoes(ir)
	if n := len(r.Echoes); n > 1 {
		first, last := r.Echoes[0], r.Echoes[n-1]
		r.PeriodMs = (last.TimeMs - first.TimeMs) / float64(n-1)
		r.DecayPerRepeatDB = (last.LevelDB - first.LevelDB) / float64(n-1)
	} else if n == 1 {
		r.PeriodMs = r.Echoes[0].TimeMs
	}

	spectrum, binHz, err := a.spectrum(ir)
	if err != nil {
		return Report{}, err
	}
	r.Spectrum = spectrum
	r.BinHz = binHz
	r.CentroidHz = centroid(spectrum, binHz)

	return r, nil
}

// findEchoes returns local maxima of |ir| after index 0 that lie within
// ThresholdDB of the largest one. Peaks closer than MinSpacingMs collapse
// into the larger.
func (a *Analyzer) findEchoes(ir []float64) []Tap {
	if len(ir) < 2 {
		return nil
	}
	tail := ir[1:]
	peak := vecmath.MaxAbs(tail)
	if peak == 0 {
		return nil
	}

	floor := peak * math.Pow(10, a.ThresholdDB/20)
	spacing := int(math.Round(a.MinSpacingMs * 0.001 * a.SampleRate))

	var taps []Tap
	for i := 1; i < len(ir); i++ {
		v := math.Abs(ir[i])
		if v < floor || v <= math.Abs(ir[i-1]) {
			continue
		}
		if i+1 < len(ir) && v < math.Abs(ir[i+1]) {
			continue
		}

		tap := a.tap(i, v)
		if n := len(taps); n > 0 && i-taps[n-1].Index < spacing {
			if v > taps[n-1].Level {
				taps[n-1] = tap
			}
			continue
		}
		taps = append(taps, tap)
	}
	return taps
}

func (a *Analyzer) tap(i int, level float64) Tap {
	return Tap{
		Index:   i,
		TimeMs:  float64(i) * 1000 / a.SampleRate,
		Level:   level,
		LevelDB: levelDB(level),
	}
}

// spectrum returns the normalized magnitude spectrum of ir after a falling
// half-Hann fade that suppresses truncation of the tail.
func (a *Analyzer) spectrum(ir []float64) ([]float64, float64, error) {
	n := min(len(ir), maxFFTSize)
	fftSize := nextPow2(n)

	faded := make([]float64, n)
	fade := make([]float64, n)
	for i := range fade {
		fade[i] = 0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(n)))
	}
	vecmath.MulBlock(faded, ir[:n], fade)

	in := make([]complex128, fftSize)
	for i, v := range faded {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, err
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)
	if peak := vecmath.MaxAbs(mag); peak > 0 {
		vecmath.ScaleBlockInPlace(mag, 1/peak)
	}

	return mag, a.SampleRate / float64(fftSize), nil
}

func centroid(mag []float64, binHz float64) float64 {
	den := vecmath.Sum(mag)
	if den == 0 {
		return 0
	}
	freqs := make([]float64, len(mag))
	for i := range freqs {
		freqs[i] = float64(i) * binHz
	}
	return vecmath.DotProduct(freqs, mag) / den
}

func levelDB(v float64) float64 {
	if v <= 0 {
		return silenceDB
	}
	return 20 * approx.FastLog(v) / ln10
}

func nextPow2(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}
