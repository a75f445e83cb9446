package search

import (
	"bufio"
	"fmt"
	"os"
)

// fitnessTracker appends one "generation,best_fitness" row per generation
// to the file named by --track-fitness, for offline convergence plots.
type fitnessTracker struct {
	f *os.File
	w *bufio.Writer
}

func newFitnessTracker(path string) (*fitnessTracker, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString("generation,best_fitness\n"); err != nil {
		f.Close()
		return nil, err
	}
	return &fitnessTracker{f: f, w: w}, nil
}

func (t *fitnessTracker) Record(generation int, best float64) error {
	_, err := fmt.Fprintf(t.w, "%d,%f\n", generation, best)
	return err
}

func (t *fitnessTracker) Close() error {
	if err := t.w.Flush(); err != nil {
		t.f.Close()
		return err
	}
	return t.f.Close()
}
