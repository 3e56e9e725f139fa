package engine

import (
	"strconv"
	"strings"
	"time"
)

// progressParser folds ffmpeg's -progress key=value stream into updates.
// Both out_time_us and out_time_ms carry microseconds.
type progressParser struct {
	duration float64
	outTime  time.Duration
}

func newProgressParser(durationSeconds float64) *progressParser {
	return &progressParser{duration: durationSeconds}
}

func (p *progressParser) feed(line string) (Progress, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return Progress{}, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || us < 0 {
			return Progress{}, false
		}
		p.outTime = time.Duration(us) * time.Microsecond
		return Progress{Percent: p.percent(), OutTime: p.outTime}, true
	case "progress":
		if strings.TrimSpace(value) == "end" {
			return Progress{Percent: 100, OutTime: p.outTime, Done: true}, true
		}
	}
	return Progress{}, false
}

func (p *progressParser) percent() float64 {
	if p.duration <= 0 {
		return 0
	}
	return min(p.outTime.Seconds()/p.duration*100, 100)
}
