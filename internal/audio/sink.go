// Package audio is the beep-backed output layer: a pausable,
// volume-controlled sink for music playback and a fire-and-forget alarm
// player. Both render through one speaker mix; each owns its own
// streamer chain, so alarm and music volume never interfere.
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/kursadm/tomatui/internal/log"
)

// mixRate is the fixed speaker sample rate; every decoded stream is
// resampled to it.
const mixRate = beep.SampleRate(44100)

var initOnce sync.Once

// Init opens the speaker. Safe to call more than once.
func Init() error {
	var err error
	initOnce.Do(func() {
		err = speaker.Init(mixRate, mixRate.N(100*time.Millisecond))
	})
	return err
}

// decode opens and decodes an audio file based on its extension.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		err = fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}

// Sink is the music output channel. The control goroutine calls
// Pause/Resume/Stop/SetVolume while a detached goroutine runs Load; the
// internal mutex serializes access to the streamer chain. The drained
// flag is an atomic because beep invokes the end-of-stream callback while
// holding the speaker lock.
type Sink struct {
	mu     sync.Mutex
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	done   *atomic.Bool
	closer beep.StreamSeekCloser
	gain   float64
	logger *log.Logger
}

// NewSink creates a sink at full gain. Init must have succeeded first.
func NewSink(logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.Discard()
	}
	done := &atomic.Bool{}
	done.Store(true)
	return &Sink{done: done, gain: 1.0, logger: logger}
}

// Prepare marks the sink as not drained ahead of an asynchronous Load, so
// a poll between Play and the decode finishing never sees a stale
// end-of-stream from the previous track.
func (s *Sink) Prepare() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := &atomic.Bool{}
	s.done = fresh
}

// Load decodes path and starts playing it. Meant to run on a detached
// goroutine; a decode failure is logged and reported as drained so
// auto-advance treats the track as finished.
func (s *Sink) Load(path string) error {
	streamer, format, err := decode(path)
	if err != nil {
		s.logger.Append(log.Event{Event: log.EventDecodeFailed, Path: path, Error: err.Error()})
		s.mu.Lock()
		s.done.Store(true)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.detachLocked()
	done := s.done
	var src beep.Streamer = streamer
	if format.SampleRate != mixRate {
		src = beep.Resample(4, format.SampleRate, mixRate, streamer)
	}
	ctrl := &beep.Ctrl{Streamer: beep.Seq(src, beep.Callback(func() {
		done.Store(true)
	}))}
	vol := &effects.Volume{Streamer: ctrl, Base: 2}
	applyGain(vol, s.gain)
	s.ctrl = ctrl
	s.vol = vol
	s.closer = streamer
	s.mu.Unlock()

	speaker.Play(vol)
	return nil
}

// detachLocked drops the current chain from the mix. Caller holds s.mu.
func (s *Sink) detachLocked() {
	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Streamer = nil
		speaker.Unlock()
		s.ctrl = nil
		s.vol = nil
	}
	if s.closer != nil {
		s.closer.Close()
		s.closer = nil
	}
}

// Pause suspends playback, keeping position.
func (s *Sink) Pause() { s.setPaused(true) }

// Resume continues a paused stream.
func (s *Sink) Resume() { s.setPaused(false) }

func (s *Sink) setPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

// Stop halts playback and releases the decoded stream.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
	s.done.Store(true)
}

// SetVolume sets linear gain in [0,1]. The gain survives track changes:
// a chain attached later inherits it, so a duck that lands while a track
// is still decoding sticks (last write wins).
func (s *Sink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = v
	if s.vol == nil {
		return
	}
	speaker.Lock()
	applyGain(s.vol, v)
	speaker.Unlock()
}

// Drained reports whether the current stream has played to its end (or
// failed to decode). After Stop it also reads true; callers gate on
// their own run state.
func (s *Sink) Drained() bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	return done.Load()
}

// applyGain maps a linear 0..1 volume onto beep's exponential scale.
func applyGain(vol *effects.Volume, v float64) {
	if v <= 0 {
		vol.Silent = true
		return
	}
	vol.Silent = false
	vol.Volume = math.Log2(v)
}
