package ui

import (
	"fmt"
	"time"
)

// formatDuration formats a duration as m:ss, or h:mm:ss past an hour.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func progressRatio(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return max(0, min(float64(elapsed)/float64(total), 1))
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " · zalgoplayer"
	}
	return "▶ " + title + " · zalgoplayer"
}
