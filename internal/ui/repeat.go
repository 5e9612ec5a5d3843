package ui

// RepeatMode represents the current repeat setting.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
)

// Next cycles to the next repeat mode.
func (r RepeatMode) Next() RepeatMode {
	if r == RepeatOff {
		return RepeatOne
	}
	return RepeatOff
}

// Icon returns a visual indicator for the repeat mode.
func (r RepeatMode) Icon() string {
	if r == RepeatOne {
		return "⟳ loop"
	}
	return ""
}
