package moderation

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/png"
	"math/rand"
	"regexp"
)

var ErrTooLarge = errors.New("image payload too large")
var ErrBadPayload = errors.New("not a decodable image payload")

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Thresholds decide when a classified image is judged unsafe; any single
// category past its threshold is enough.
type Thresholds struct {
	NudityRaw     float64
	NudityPartial float64
	Weapon        float64
	Alcohol       float64
	Offensive     float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		NudityRaw:     0.5,
		NudityPartial: 0.6,
		Weapon:        0.5,
		Alcohol:       0.5,
		Offensive:     0.5,
	}
}

func (t Thresholds) Exceeded(s Scores) bool {
	return s.Nudity.Raw > t.NudityRaw ||
		s.Nudity.Partial > t.NudityPartial ||
		s.Weapon > t.Weapon ||
		s.Alcohol > t.Alcohol ||
		s.Offensive.Prob > t.Offensive
}

type Verdict struct {
	Unsafe bool
	Scores Scores
}

// Pipeline decodes an uploaded payload, bounds the classification cost to a
// single static frame, and asks the classifier for a verdict. It holds no
// game state; cooldown gating happens in the room before a payload ever
// reaches it.
type Pipeline struct {
	classifier Classifier
	thresholds Thresholds
	maxBytes   int
	intn       func(n int) int // frame sampling, injectable for tests
}

func NewPipeline(c Classifier, t Thresholds, maxBytes int) *Pipeline {
	return &Pipeline{
		classifier: c,
		thresholds: t,
		maxBytes:   maxBytes,
		intn:       rand.Intn,
	}
}

// Enabled reports whether a classifier is configured. When false, uploads
// are rejected with a configuration error rather than let through unchecked.
func (p *Pipeline) Enabled() bool { return p.classifier != nil }

// Check runs decode, frame sampling and classification. Any returned error
// is transient from the caller's point of view: nothing was mutated and no
// cooldown should be charged.
func (p *Pipeline) Check(ctx context.Context, payload string) (Verdict, error) {
	raw, err := p.decode(payload)
	if err != nil {
		return Verdict{}, err
	}
	frame, err := p.sampleFrame(raw)
	if err != nil {
		return Verdict{}, err
	}
	scores, err := p.classifier.Classify(ctx, frame)
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{Unsafe: p.thresholds.Exceeded(scores), Scores: scores}, nil
}

func (p *Pipeline) decode(payload string) ([]byte, error) {
	if p.maxBytes > 0 && len(payload) > p.maxBytes {
		return nil, ErrTooLarge
	}
	stripped := dataURIPrefix.ReplaceAllString(payload, "")
	raw, err := base64.StdEncoding.DecodeString(stripped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return raw, nil
}

func isAnimated(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte("GIF87a")) || bytes.HasPrefix(raw, []byte("GIF89a"))
}

// sampleFrame returns the payload unchanged for static images. For animated
// GIFs it picks one frame at a uniformly random index and re-encodes it as
// PNG, so classification cost does not grow with animation length.
func (p *Pipeline) sampleFrame(raw []byte) ([]byte, error) {
	if !isAnimated(raw) {
		return raw, nil
	}
	g, err := gif.DecodeAll(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(g.Image) == 0 {
		return nil, ErrBadPayload
	}
	idx := 0
	if len(g.Image) > 1 {
		idx = p.intn(len(g.Image))
	}
	frame := g.Image[idx]

	canvas := image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))
	draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
