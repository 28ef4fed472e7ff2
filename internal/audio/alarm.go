package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/kursadm/tomatui/internal/log"
)

// alarmNames are tried in priority order inside the alarm directory.
var alarmNames = []string{"alarm.wav", "alarm.mp3", "alarm.ogg", "alarm.flac"}

// FindAlarmFile returns the first alarm sound present in dir, or "".
func FindAlarmFile(dir string) string {
	for _, name := range alarmNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// RingAlarm plays the alarm sound on a detached goroutine through its own
// streamer chain, never the music sink. Playback is capped at duration.
// If no file is found or decoding fails it falls back to the terminal
// bell once per second for the duration. Fire-and-forget: failures are
// logged, never surfaced, and nothing the user does cancels it early.
func RingAlarm(dir string, duration time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.Discard()
	}
	go func() {
		path := FindAlarmFile(dir)
		if path != "" && playAlarmFile(path, duration, logger) {
			return
		}
		logger.Append(log.Event{Event: log.EventAlarmFallback, Path: path})
		ringBell(duration)
	}()
}

func playAlarmFile(path string, duration time.Duration, logger *log.Logger) bool {
	streamer, format, err := decode(path)
	if err != nil {
		logger.Append(log.Event{Event: log.EventDecodeFailed, Path: path, Error: err.Error()})
		return false
	}

	var src beep.Streamer = streamer
	if format.SampleRate != mixRate {
		src = beep.Resample(4, format.SampleRate, mixRate, streamer)
	}
	capped := beep.Take(mixRate.N(duration), src)

	finished := make(chan struct{})
	vol := &effects.Volume{
		Streamer: beep.Seq(capped, beep.Callback(func() { close(finished) })),
		Base:     2,
	}
	logger.Append(log.Event{Event: log.EventAlarmStarted, Path: path})
	speaker.Play(vol)

	select {
	case <-finished:
	case <-time.After(duration + time.Second):
		// Cap the wait; the streamer drains on its own.
	}
	streamer.Close()
	return true
}

// ringBell emits the ASCII bell once per second for the duration.
func ringBell(duration time.Duration) {
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		fmt.Print("\a")
		os.Stdout.Sync()
		time.Sleep(time.Second)
	}
}
