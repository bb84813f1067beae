// Package echo renders and analyzes the impulse response of the analog delay.
//
// The analysis reports:
//
//   - Echo taps: sample position, time and level of each repeat
//   - Repeat period and mean level change per repeat
//   - Magnitude spectrum of the response and its spectral centroid, which
//     falls as the feedback lowpass darkens successive repeats
//
// # Usage
//
//	ir, err := echo.Render(engine, 96000, tempo.None)
//	report, err := echo.NewAnalyzer(48000).Analyze(ir)
//	fmt.Printf("period = %.1f ms, decay = %.1f dB/repeat\n", report.PeriodMs, report.DecayPerRepeatDB)
package echo
