package spectrum

import "github.com/charmbracelet/harmonica"

// Spring eases column intensities toward each new target so bars rise and
// fall with some inertia instead of jumping every frame.
type Spring struct {
	spring harmonica.Spring
	limit  float64
	pos    []float64
	vel    []float64
}

// NewSpring returns a Spring stepped fps times per second. Output is clamped
// to [0, limit] so overshoot never produces a negative count.
func NewSpring(fps int, frequency, damping, limit float64) *Spring {
	if fps <= 0 {
		fps = 60
	}
	return &Spring{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		limit:  limit,
	}
}

// Step advances every column one frame toward targets, in place.
func (s *Spring) Step(targets []float64) []float64 {
	if len(s.pos) != len(targets) {
		s.pos = make([]float64, len(targets))
		s.vel = make([]float64, len(targets))
	}
	for i, target := range targets {
		p, v := s.spring.Update(s.pos[i], s.vel[i], target)
		s.pos[i] = p
		s.vel[i] = v
		switch {
		case p < 0:
			p = 0
		case p > s.limit:
			p = s.limit
		}
		targets[i] = p
	}
	return targets
}

// Reset drops the spring state so the next Step starts from rest at zero.
func (s *Spring) Reset() {
	s.pos = nil
	s.vel = nil
}
