package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SoundType represents different sound effects.
type SoundType int

const (
	SoundDrop SoundType = iota
	SoundInvalid
	SoundWin
	SoundLoss
	SoundDraw
)

const sampleRate = 44100

// AudioManager plays short synthesized effects.
type AudioManager struct {
	context *audio.Context
	sounds  map[SoundType][]byte
	enabled bool
	volume  float64
}

// NewAudioManager creates the audio context and renders every effect.
// Ebitengine allows one audio context per process.
func NewAudioManager() *AudioManager {
	am := &AudioManager{
		context: audio.NewContext(sampleRate),
		sounds:  make(map[SoundType][]byte),
		enabled: true,
		volume:  0.5,
	}

	// A disc landing: a damped thud with a little rattle.
	am.sounds[SoundDrop] = synth(0.12, func(t, _ float64) float64 {
		rattle := 0.25 * math.Sin(2*math.Pi*1250*t) * math.Exp(-t*60)
		return (math.Sin(2*math.Pi*180*t) + rattle) * math.Exp(-t*28) * 0.5
	})
	am.sounds[SoundInvalid] = synth(0.1, func(t, p float64) float64 {
		wave := math.Sin(2*math.Pi*150*t) + 0.3*math.Sin(4*math.Pi*150*t)
		return wave * (1 - p) * 0.15
	})
	am.sounds[SoundWin] = arpeggio([]float64{523.25, 659.25, 783.99, 1046.5}, 0.11, 0.35)
	am.sounds[SoundLoss] = arpeggio([]float64{392.00, 329.63, 261.63}, 0.16, 0.3)
	am.sounds[SoundDraw] = synth(0.4, func(t, p float64) float64 {
		chord := math.Sin(2*math.Pi*349.23*t) + math.Sin(2*math.Pi*440*t)
		return chord / 2 * fadeInOut(p, 0.1, 0.3) * 0.35
	})
	return am
}

// synth renders duration seconds of 16-bit stereo PCM. wave receives the time
// in seconds and the progress in [0, 1) and returns a sample in [-1, 1].
func synth(duration float64, wave func(t, progress float64) float64) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := range samples {
		t := float64(i) / sampleRate
		s := max(-1, min(1, wave(t, t/duration)))
		val := int16(s * 32767)
		data[i*4] = byte(val)
		data[i*4+1] = byte(val >> 8)
		data[i*4+2] = byte(val)
		data[i*4+3] = byte(val >> 8)
	}
	return data
}

// arpeggio plays notes one after another, each for step seconds.
func arpeggio(freqs []float64, step, amplitude float64) []byte {
	var out []byte
	for i, f := range freqs {
		last := i == len(freqs)-1
		d := step
		if last {
			d = step * 3
		}
		out = append(out, synth(d, func(t, p float64) float64 {
			return math.Sin(2*math.Pi*f*t) * fadeInOut(p, 0.05, 0.4) * amplitude
		})...)
	}
	return out
}

// fadeInOut is a trapezoid envelope with the given attack and release shares.
func fadeInOut(p, attack, release float64) float64 {
	switch {
	case p < attack:
		return p / attack
	case p > 1-release:
		return (1 - p) / release
	}
	return 1
}

// Play starts a sound effect. Overlapping plays are allowed.
func (am *AudioManager) Play(sound SoundType) {
	if am == nil || !am.enabled {
		return
	}
	data, ok := am.sounds[sound]
	if !ok {
		return
	}
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// SetVolume sets the audio volume (0.0 to 1.0).
func (am *AudioManager) SetVolume(volume float64) {
	am.volume = max(0, min(1, volume))
}

// IsEnabled returns whether audio is enabled.
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}
