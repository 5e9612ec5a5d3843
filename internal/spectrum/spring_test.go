package spectrum

import "testing"

func TestSpringConvergesToTarget(t *testing.T) {
	s := NewSpring(60, 6, 1, 10)
	var out []float64
	for range 600 {
		out = s.Step([]float64{8, 0})
	}
	if out[0] < 7.9 || out[0] > 8.1 {
		t.Fatalf("expected column 0 near 8, got %v", out[0])
	}
	if out[1] != 0 {
		t.Fatalf("expected column 1 at rest, got %v", out[1])
	}
}

func TestSpringClampsOvershoot(t *testing.T) {
	// Low damping overshoots both ways.
	s := NewSpring(60, 12, 0.1, 10)
	for i := range 300 {
		target := 10.0
		if i%40 >= 20 {
			target = 0
		}
		out := s.Step([]float64{target})
		if out[0] < 0 || out[0] > 10 {
			t.Fatalf("step %d: expected value in [0, 10], got %v", i, out[0])
		}
	}
}

func TestSpringResizeResetsState(t *testing.T) {
	s := NewSpring(60, 6, 1, 10)
	s.Step([]float64{10, 10})
	out := s.Step([]float64{0, 0, 0})
	if len(out) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("column %d: expected rest after resize, got %v", i, v)
		}
	}
}

func TestSpringResetStartsFromRest(t *testing.T) {
	fresh := NewSpring(60, 6, 1, 10)
	first := fresh.Step([]float64{10})[0]

	s := NewSpring(60, 6, 1, 10)
	for range 100 {
		s.Step([]float64{10})
	}
	s.Reset()
	if got := s.Step([]float64{10})[0]; got != first {
		t.Fatalf("expected %v after reset, got %v", first, got)
	}
}
