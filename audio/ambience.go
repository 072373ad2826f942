// Package audio plays a rain ambience whose loudness follows drop density
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/matrix-rain/rain"
)

const (
	sampleRate = beep.SampleRate(48000)

	// DensityFull is the drop density heard at full intensity
	DensityFull = 0.1

	DefaultVolume = 0.5
)

// Ambience owns the speaker and the rain stream
// Every method is safe before Initialize and after Cleanup
type Ambience struct {
	mu          sync.Mutex
	noise       *RainNoise
	ctrl        *beep.Ctrl
	mixer       *beep.Mixer
	initialized bool
}

func NewAmbience(volume float64, seed uint64) *Ambience {
	noise := NewRainNoise(sampleRate, seed)
	return &Ambience{
		noise: noise,
		ctrl:  &beep.Ctrl{Streamer: newVolume(noise, volume), Paused: false},
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the audio device and starts the stream
func (a *Ambience) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100))
	if err != nil {
		return err
	}

	a.mixer.Add(a.ctrl)
	speaker.Play(a.mixer)
	a.initialized = true
	return nil
}

// Observe maps the grid's drop density onto the stream intensity
// Square root scaling keeps sparse rain audible
func (a *Ambience) Observe(g *rain.Grid) {
	a.noise.SetIntensity(Intensity(g))
}

// Intensity is sqrt(density / DensityFull), clamped to [0, 1]
func Intensity(g *rain.Grid) float64 {
	if g.Len() == 0 {
		return 0
	}
	density := float64(g.DropCount()) / float64(g.Len())
	return min(math.Sqrt(max(density, 0)/DensityFull), 1)
}

// SetPaused mutes or resumes the stream
func (a *Ambience) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		a.ctrl.Paused = paused
		return
	}
	speaker.Lock()
	a.ctrl.Paused = paused
	speaker.Unlock()
}

// Cleanup stops the stream
func (a *Ambience) Cleanup() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return
	}

	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()

	// beep doesn't provide a Close() for the speaker; clearing its
	// streamers ensures no audio artifacts
	speaker.Clear()
	a.mixer.Clear()
	a.initialized = false
}
