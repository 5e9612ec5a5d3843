package player

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
)

const (
	outputSampleRate = 48000
	outputChannels   = 2
	outputFrameSize  = outputChannels * 2 // 16-bit samples

	resampleQuality = 4

	// DefaultTapSize holds enough samples for the largest analysis size.
	DefaultTapSize = 1 << 15
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   outputSampleRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
			// Small buffer keeps the tap close to what is audible.
			BufferSize: 50 * time.Millisecond,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Options configure a Player.
type Options struct {
	Volume  float64
	TapSize int
}

// Player manages audio playback of one file.
type Player struct {
	mu        sync.Mutex
	file      *os.File
	decoder   audioDecoder
	reader    *pcmReader
	tap       *Tap
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	duration  time.Duration
	volume    float64
	paused    bool
	done      chan struct{}
	stopMon   chan struct{}
	closed    bool
}

// New opens path and prepares it for playback. Playback starts paused.
func New(path string, opts Options) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if dec.SampleRate() <= 0 {
		f.Close()
		return nil, fmt.Errorf("unsupported sample rate: %d", dec.SampleRate())
	}

	ctx, err := initOto()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening audio device: %w", err)
	}

	tapSize := opts.TapSize
	if tapSize <= 0 {
		tapSize = DefaultTapSize
	}

	p := &Player{
		file:     f,
		decoder:  dec,
		tap:      NewTap(tapSize),
		otoCtx:   ctx,
		duration: dec.SampleRate().D(dec.Len()),
		volume:   clampVolume(opts.Volume),
		paused:   true,
		done:     make(chan struct{}),
		stopMon:  make(chan struct{}),
	}
	p.reader = newPCMReader(p.resampled(), p.tap)
	p.otoPlayer = ctx.NewPlayer(p.reader)
	p.otoPlayer.SetVolume(p.volume)

	go p.monitor(p.done, p.stopMon)

	return p, nil
}

// resampled wraps the decoder at its current position for the output rate.
func (p *Player) resampled() beep.Streamer {
	rate := p.decoder.SampleRate()
	if rate == outputSampleRate {
		return p.decoder
	}
	return beep.Resample(resampleQuality, rate, outputSampleRate, p.decoder)
}

func (p *Player) monitor(done, stop chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		_, eof := p.reader.position()
		finished := eof && !p.paused && !p.otoPlayer.IsPlaying()
		if finished {
			p.paused = true
		}
		p.mu.Unlock()

		if finished {
			close(done)
			return
		}
	}
}

// Done returns a channel that closes when playback reaches the end.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Play starts or resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.paused {
		return
	}
	p.paused = false
	if p.otoPlayer != nil {
		p.otoPlayer.Play()
	}
}

// Pause pauses playback. It is a no-op when already paused.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	frames, _ := p.reader.position()
	return beep.SampleRate(outputSampleRate).D(int(frames))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by delta from the current position.
func (p *Player) Seek(delta time.Duration) error {
	return p.SeekTo(p.Position() + delta)
}

// SeekTo moves playback to target, clamped to the track. Seeking after the
// track ended rearms Done.
func (p *Player) SeekTo(target time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}

	err := p.reader.seek(func() (beep.Streamer, int64, error) {
		rate := p.decoder.SampleRate()
		frame := seekFrame(target, rate, p.decoder.Len())
		if err := p.decoder.Seek(frame); err != nil {
			return nil, 0, err
		}
		p.tap.Clear()
		return p.resampled(), int64(frame) * outputSampleRate / int64(rate), nil
	})
	if err != nil {
		return err
	}

	select {
	case <-p.done:
		p.done = make(chan struct{})
		p.stopMon = make(chan struct{})
		go p.monitor(p.done, p.stopMon)
	default:
	}

	// A fresh device player drops audio buffered from the old position.
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		p.otoPlayer.Close()
		p.otoPlayer = p.otoCtx.NewPlayer(p.reader)
		p.otoPlayer.SetVolume(p.volume)
		if !p.paused {
			p.otoPlayer.Play()
		}
	}
	return nil
}

// Restart seeks to the beginning and resumes playback.
func (p *Player) Restart() error {
	if err := p.SeekTo(0); err != nil {
		return err
	}
	p.Play()
	return nil
}

func seekFrame(target time.Duration, rate beep.SampleRate, length int) int {
	if target < 0 {
		return 0
	}
	return min(rate.N(target), length)
}

// RecentSamples returns up to n of the most recently played mono samples.
func (p *Player) RecentSamples(n int) []float64 {
	return p.tap.RecentSamples(n)
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.SetVolume(p.Volume() + delta)
}

func clampVolume(v float64) float64 {
	return max(0, min(v, 1))
}

// Close releases all resources. It is safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.stopMon != nil {
		close(p.stopMon)
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		p.otoPlayer.Close()
	}
	if p.file != nil {
		p.file.Close()
	}
}
