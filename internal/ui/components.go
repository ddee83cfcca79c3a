package ui

import (
	"fmt"
	"strings"
	"time"
)

// statusLines is how many terminal rows sit below the stage.
const statusLines = 2

func renderSpeed(speed float64) string {
	return fmt.Sprintf("speed %+.1f", speed)
}

func renderStrength(v float64) string {
	return fmt.Sprintf("%3d%%", int(clamp01(v)*100+0.5))
}

// renderElapsed formats the running time implied by a frame count as m:ss.
func renderElapsed(frames uint64, fps int) string {
	if fps < 1 {
		return "0:00"
	}
	d := time.Duration(frames) * time.Second / time.Duration(fps)
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
