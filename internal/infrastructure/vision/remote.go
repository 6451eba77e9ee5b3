package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

// RemoteBackendName имя HTTP-бэкенда в поле Sources
const RemoteBackendName = "remote"

// maxResponseBytes ограничение на размер ответа сервиса
const maxResponseBytes = 1 << 20

// RemoteBackend клиент внешнего HTTP-сервиса анализа изображений
type RemoteBackend struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type remoteRequest struct {
	Image string `json:"image"`
	Notes string `json:"notes,omitempty"`
}

// NewRemoteBackend создаёт клиента. Таймаут задаётся контекстом вызова.
func NewRemoteBackend(endpoint, apiKey string, httpClient *http.Client) *RemoteBackend {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RemoteBackend{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (b *RemoteBackend) Name() string {
	return RemoteBackendName
}

// Infer отправляет изображение в base64 и разбирает список дефектов из ответа
func (b *RemoteBackend) Infer(ctx context.Context, imageData []byte, notes string) ([]entity.Candidate, error) {
	if b.endpoint == "" {
		return nil, errors.New("remote endpoint is not configured")
	}

	body, err := json.Marshal(remoteRequest{
		Image: base64.StdEncoding.EncodeToString(imageData),
		Notes: notes,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "safenest/1.0")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service returned %d: %s", resp.StatusCode, string(payload))
	}

	raws, err := decodeDefects(string(payload))
	if err != nil {
		return nil, err
	}
	return toCandidates(raws, RemoteBackendName), nil
}

// Проверка реализации интерфейса
var _ port.AnalysisBackend = (*RemoteBackend)(nil)
