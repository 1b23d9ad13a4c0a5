package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"
)

var ErrClassifier = errors.New("classifier did not return success")

// Scores is the per-category verdict of the content classifier, in the
// Sightengine response shape.
type Scores struct {
	Status string `json:"status"`
	Nudity struct {
		Raw     float64 `json:"raw"`
		Partial float64 `json:"partial"`
	} `json:"nudity"`
	Weapon    float64 `json:"weapon"`
	Alcohol   float64 `json:"alcohol"`
	Offensive struct {
		Prob float64 `json:"prob"`
	} `json:"offensive"`
}

// Classifier judges a single static image. Implementations may be slow and
// must honor the context.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Scores, error)
}

const sightengineURL = "https://api.sightengine.com/1.0/check.json"

// Sightengine calls the hosted moderation API with a bounded request: one
// static frame per submission, never a full animation.
type Sightengine struct {
	APIUser   string
	APISecret string
	URL       string // defaults to the hosted endpoint
	Client    *http.Client
}

func (s *Sightengine) Classify(ctx context.Context, image []byte) (Scores, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("media", "image.jpg")
	if err != nil {
		return Scores{}, err
	}
	if _, err := part.Write(image); err != nil {
		return Scores{}, err
	}
	_ = form.WriteField("models", "nudity,wad,offensive")
	_ = form.WriteField("api_user", s.APIUser)
	_ = form.WriteField("api_secret", s.APISecret)
	if err := form.Close(); err != nil {
		return Scores{}, err
	}

	url := s.URL
	if url == "" {
		url = sightengineURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Scores{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Scores{}, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	var scores Scores
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return Scores{}, fmt.Errorf("classifier response: %w", err)
	}
	if scores.Status != "success" {
		return Scores{}, ErrClassifier
	}
	return scores, nil
}
