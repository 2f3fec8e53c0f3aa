package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ============================================================================
// IMAGE GENERATION SERVICE - storyboard frame previews
// Thin wrapper around the OpenAI Images API; the frame description plus
// shot metadata becomes the prompt and the hosted image URL comes back.
// ============================================================================

type ImageGenService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

type imageGenRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func NewImageGenService() *ImageGenService {
	model := os.Getenv("IMAGE_GEN_MODEL")
	if model == "" {
		model = "dall-e-3"
	}

	return &ImageGenService{
		apiKey: os.Getenv("OPENAI_API_KEY"),
		model:  model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// GenerateFrame renders a storyboard frame from its description and shot
// metadata. Returns the hosted image URL.
func (s *ImageGenService) GenerateFrame(ctx context.Context, description, shotType, cameraMovement string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not configured")
	}

	prompt := fmt.Sprintf("Film storyboard frame, pencil sketch style: %s", description)
	if shotType != "" {
		prompt += fmt.Sprintf(". Shot type: %s", shotType)
	}
	if cameraMovement != "" {
		prompt += fmt.Sprintf(". Camera movement: %s", cameraMovement)
	}

	reqBody := imageGenRequest{
		Model:  s.model,
		Prompt: prompt,
		N:      1,
		Size:   "1792x1024",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/images/generations", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image generation failed: status %d: %s", resp.StatusCode, string(body))
	}

	var result imageGenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("image generation returned no image")
	}

	return result.Data[0].URL, nil
}
