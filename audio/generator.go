package audio

import (
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/gopxl/beep"
)

// Rain sound shaping
const (
	washGain   = 0.6
	clickGain  = 0.3
	lowpassHz  = 1800.0
	smoothSec  = 0.25  // intensity glide time constant
	clickDecay = 0.004 // seconds for a drop click to fade by 1/e
	clicksMax  = 60.0  // drop clicks per second at full intensity
)

// RainNoise is an endless stereo rain hiss
// A low-passed noise wash carries the body, sparse decaying clicks
// stand in for single drops. Loudness and click rate follow the intensity.
type RainNoise struct {
	rng       *rand.Rand
	intensity atomic.Uint64 // float64 bits, written from any goroutine

	// Audio goroutine only
	level      float64
	glide      float64
	alpha      float64
	lowL, lowR float64
	clickP     float64
	clickK     float64
	click      float64
}

// NewRainNoise creates a silent generator for sample rate sr
func NewRainNoise(sr beep.SampleRate, seed uint64) *RainNoise {
	rate := float64(sr)
	return &RainNoise{
		rng:    rand.New(rand.NewPCG(seed, seed^0x5851F42D4C957F2D)),
		glide:  1 / (rate * smoothSec),
		alpha:  1 - math.Exp(-2*math.Pi*lowpassHz/rate),
		clickP: clicksMax / rate,
		clickK: math.Exp(-1 / (rate * clickDecay)),
	}
}

// SetIntensity sets the target loudness, clamped to [0, 1]
func (n *RainNoise) SetIntensity(v float64) {
	v = min(max(v, 0), 1)
	n.intensity.Store(math.Float64bits(v))
}

func (n *RainNoise) Intensity() float64 {
	return math.Float64frombits(n.intensity.Load())
}

func (n *RainNoise) Stream(samples [][2]float64) (int, bool) {
	target := n.Intensity()

	for i := range samples {
		n.level += (target - n.level) * n.glide

		n.lowL += (n.rng.Float64()*2 - 1 - n.lowL) * n.alpha
		n.lowR += (n.rng.Float64()*2 - 1 - n.lowR) * n.alpha

		if n.rng.Float64() < n.clickP*n.level {
			n.click = n.level
		}
		c := n.click * (n.rng.Float64()*2 - 1)
		n.click *= n.clickK

		samples[i][0] = washGain*n.level*n.lowL + clickGain*c
		samples[i][1] = washGain*n.level*n.lowR + clickGain*c
	}
	return len(samples), true
}

func (n *RainNoise) Err() error { return nil }
