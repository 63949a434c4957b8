package progress

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// SubProgressMsg updates the byte progress of the current step
type SubProgressMsg struct {
	Percent float64
	Detail  string
}

// ByteProgress returns a download progress callback that sends
// SubProgressMsg to a running program, at most once per percent.
// The callback is shared by every item of a run.
func ByteProgress(p *tea.Program) func(downloaded, total int64) {
	return throttledProgress(func(msg SubProgressMsg) { p.Send(msg) })
}

func throttledProgress(send func(SubProgressMsg)) func(downloaded, total int64) {
	var lastUpdate float64 = -1
	var lastDownloaded int64
	return func(downloaded, total int64) {
		// A smaller count means the next item started
		if downloaded < lastDownloaded {
			lastUpdate = -1
		}
		lastDownloaded = downloaded

		if total <= 0 {
			send(SubProgressMsg{Percent: 0, Detail: FormatBytes(downloaded)})
			return
		}

		percent := float64(downloaded) / float64(total) * 100

		// Only send updates every 1% to avoid flooding
		if percent-lastUpdate >= 1 || percent >= 100 {
			lastUpdate = percent
			send(SubProgressMsg{
				Percent: percent,
				Detail:  FormatBytes(downloaded) + " / " + FormatBytes(total),
			})
		}
	}
}

// FormatBytes formats bytes into human-readable string
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatInt(bytes, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(bytes)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "B"
}
