// Package playback implements the music library and the playback-mode
// state machine over an abstract audio sink.
package playback

import (
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kursadm/tomatui/internal/log"
)

// Sink is the audio output channel the engine drives. The real
// implementation is audio.Sink; tests substitute a fake.
type Sink interface {
	// Prepare marks the sink not drained ahead of an asynchronous Load.
	Prepare()
	// Load decodes and starts a file; called on a detached goroutine.
	Load(path string) error
	Pause()
	Resume()
	Stop()
	SetVolume(v float64)
	Drained() bool
}

// SinkOpener lazily acquires the output sink the first time a track is
// started.
type SinkOpener func() (Sink, error)

// State is the transport state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// Mode selects how the next track is chosen when one finishes.
type Mode int

const (
	ModeSequential Mode = iota
	ModeRandom
	ModeLoopAll
	ModeLoopCurrent
)

var modeNames = map[Mode]string{
	ModeSequential:  "Sequential",
	ModeRandom:      "Random",
	ModeLoopAll:     "Loop All",
	ModeLoopCurrent: "Loop One",
}

func (m Mode) String() string { return modeNames[m] }

// Next returns the successor in the fixed 4-cycle.
func (m Mode) Next() Mode { return (m + 1) % 4 }

// Track is one entry in the library. A sentinel entry (empty Path) is a
// placeholder line shown when no files were found.
type Track struct {
	Name     string
	Path     string
	Duration time.Duration // zero when unknown
}

// Sentinel reports whether the track is a placeholder, not a real file.
func (t Track) Sentinel() bool { return t.Path == "" }

// audioExtensions is the scan allow-list, matched case-insensitively.
var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true,
	".m4a": true, ".aac": true, ".ogg": true,
}

const scanDepth = 3

// Options configures a new Engine.
type Options struct {
	MusicDir      string
	DefaultVolume float64
	OpenSink      SinkOpener
	Rand          func(n int) int // defaults to math/rand
	Logger        *log.Logger
}

// Engine owns the track library and transport state. All methods run on
// the single control goroutine; only decoding happens elsewhere.
type Engine struct {
	tracks   []Track
	selected int
	playing  int // -1 while nothing started
	state    State
	mode     Mode

	dir    string
	sink   Sink
	open   SinkOpener
	volume float64
	randFn func(n int) int
	logger *log.Logger
}

// NewEngine scans dir and returns a stopped engine.
func NewEngine(opts Options) *Engine {
	if opts.Rand == nil {
		opts.Rand = rand.Intn
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	e := &Engine{
		playing: -1,
		dir:     opts.MusicDir,
		open:    opts.OpenSink,
		volume:  opts.DefaultVolume,
		randFn:  opts.Rand,
		logger:  opts.Logger,
	}
	e.ScanLibrary(opts.MusicDir)
	return e
}

func (e *Engine) Tracks() []Track { return e.tracks }

func (e *Engine) Selected() int { return e.selected }

func (e *Engine) Playing() int { return e.playing }

func (e *Engine) State() State { return e.state }

func (e *Engine) Mode() Mode { return e.mode }

func (e *Engine) MusicDir() string { return e.dir }

// SinkAcquired reports whether the lazy sink has been opened yet.
func (e *Engine) SinkAcquired() bool { return e.sink != nil }

// ScanLibrary enumerates audio files up to three levels deep under dir,
// in traversal order. A missing directory is created; an empty result
// yields sentinel placeholder entries instead of an error.
func (e *Engine) ScanLibrary(dir string) {
	e.dir = dir
	e.tracks = nil

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		os.MkdirAll(dir, 0o755)
		e.tracks = sentinelTracks("No music files found", dir)
		return
	}

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if depth(rel) >= scanDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		e.tracks = append(e.tracks, Track{Name: name, Path: path})
		return nil
	})

	if len(e.tracks) == 0 {
		e.tracks = sentinelTracks("No audio files found", dir)
		return
	}
	e.logger.Append(log.Event{Event: log.EventLibraryScanned, Path: dir, Tracks: len(e.tracks)})
}

func sentinelTracks(reason, dir string) []Track {
	return []Track{
		{Name: reason},
		{Name: "Looking in: " + dir},
	}
}

func depth(rel string) int {
	if rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// MoveSelection moves the cursor by delta, wrapping circularly.
func (e *Engine) MoveSelection(delta int) {
	n := len(e.tracks)
	if n == 0 {
		return
	}
	e.selected = ((e.selected+delta)%n + n) % n
}

// Play starts the given track. Out-of-range indexes, sentinel entries,
// and files that have vanished since the scan are silent no-ops.
func (e *Engine) Play(index int) {
	if index < 0 || index >= len(e.tracks) {
		return
	}
	path := e.tracks[index].Path
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	if e.sink == nil {
		if e.open == nil {
			return
		}
		sink, err := e.open()
		if err != nil {
			e.logger.Append(log.Event{Event: log.EventDecodeFailed, Path: path, Error: err.Error()})
			return
		}
		e.sink = sink
		e.sink.SetVolume(e.volume)
	}

	e.sink.Stop()
	e.sink.Prepare()
	go e.sink.Load(path)

	e.playing = index
	e.state = StatePlaying
}

// TogglePlayPause pauses a playing stream, resumes a paused one, and from
// Stopped starts the playing index if set, else the selected one.
func (e *Engine) TogglePlayPause() {
	switch e.state {
	case StatePlaying:
		e.sink.Pause()
		e.state = StatePaused
	case StatePaused:
		e.sink.Resume()
		e.state = StatePlaying
	case StateStopped:
		if e.playing >= 0 {
			e.Play(e.playing)
		} else {
			e.Play(e.selected)
		}
	}
}

// Stop halts the sink and clears the playing index.
func (e *Engine) Stop() {
	if e.sink != nil {
		e.sink.Stop()
	}
	e.state = StateStopped
	e.playing = -1
}

// Next plays the circular successor of the playing track.
func (e *Engine) Next() {
	n := len(e.tracks)
	if n == 0 {
		return
	}
	idx := 0
	if e.playing >= 0 {
		idx = (e.playing + 1) % n
	}
	e.Play(idx)
}

// Previous plays the circular predecessor of the playing track.
func (e *Engine) Previous() {
	n := len(e.tracks)
	if n == 0 {
		return
	}
	idx := 0
	if e.playing >= 0 {
		idx = (e.playing - 1 + n) % n
	}
	e.Play(idx)
}

// CyclePlaybackMode advances Sequential→Random→LoopAll→LoopCurrent→….
func (e *Engine) CyclePlaybackMode() {
	e.mode = e.mode.Next()
}

// PollFinished is called once per tick. It returns true exactly when the
// sink drained while we were Playing — a natural end, not an explicit
// stop or pause — and then performs the mode-dependent auto-advance.
func (e *Engine) PollFinished() bool {
	if e.state != StatePlaying || e.sink == nil || !e.sink.Drained() {
		return false
	}
	e.autoAdvance()
	return true
}

func (e *Engine) autoAdvance() {
	n := len(e.tracks)
	if n == 0 || e.playing < 0 {
		e.Stop()
		return
	}
	switch e.mode {
	case ModeSequential:
		if e.playing+1 < n {
			e.Play(e.playing + 1)
		} else {
			e.Stop()
		}
	case ModeRandom:
		e.Play(e.randFn(n))
	case ModeLoopAll:
		e.Play((e.playing + 1) % n)
	case ModeLoopCurrent:
		e.Play(e.playing)
	}
}

// DuckVolume lowers the sink gain during an alarm. Run state is untouched.
func (e *Engine) DuckVolume(level float64) {
	if e.sink != nil {
		e.sink.SetVolume(level)
	}
}

// RestoreVolume resets the sink gain after an alarm.
func (e *Engine) RestoreVolume(level float64) {
	if e.sink != nil {
		e.sink.SetVolume(level)
	}
}

// RefreshLibrary stops playback, rescans, and resets the cursor.
func (e *Engine) RefreshLibrary() {
	e.Stop()
	e.ScanLibrary(e.dir)
	e.selected = 0
	e.playing = -1
}
