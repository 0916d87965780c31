package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether training progress is printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where training progress is printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TrainingStats holds timing and loss information for a training run
type TrainingStats struct {
	TotalTime   time.Duration
	InitTime    time.Duration
	TrainTime   time.Duration
	EvalTime    time.Duration
	Epochs      int
	SamplesSeen int
	InitialLoss float64
	FinalLoss   float64
}

// Printf writes to Output when Verbose is set.
func Printf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format, args...)
}

// PrintTrainingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTrainingStats(stats *TrainingStats) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TRAINING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Epochs completed: %d\n", stats.Epochs)
	fmt.Fprintf(Output, "Samples seen: %d\n", stats.SamplesSeen)
	fmt.Fprintf(Output, "Loss: %.6f -> %.6f\n", stats.InitialLoss, stats.FinalLoss)
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	fmt.Fprintf(Output, "  Initialization: %v (%.1f%%)\n", stats.InitTime, percentOf(stats.InitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Training steps: %v (%.1f%%)\n", stats.TrainTime, percentOf(stats.TrainTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Evaluation: %v (%.1f%%)\n", stats.EvalTime, percentOf(stats.EvalTime, stats.TotalTime))
	if stats.SamplesSeen > 0 {
		fmt.Fprintf(Output, "  Average step time: %.3fµs\n", DurationUS(stats.TrainTime)/float64(stats.SamplesSeen))
	}
}

func percentOf(part, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
