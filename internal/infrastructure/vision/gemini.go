package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

// GeminiBackendName имя бэкенда Gemini в поле Sources
const GeminiBackendName = "gemini"

// GeminiBackend анализирует фото через модель Gemini на Vertex AI
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiClient создаёт клиента Vertex AI
func NewGeminiClient(ctx context.Context, project, location string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

// NewGeminiBackend создаёт бэкенд поверх готового клиента
func NewGeminiBackend(client *genai.Client, model string) *GeminiBackend {
	return &GeminiBackend{
		client: client,
		model:  model,
	}
}

func (b *GeminiBackend) Name() string {
	return GeminiBackendName
}

// Infer отправляет изображение и заметки в модель и разбирает JSON-ответ
func (b *GeminiBackend) Infer(ctx context.Context, imageData []byte, notes string) ([]entity.Candidate, error) {
	if b.client == nil {
		return nil, errors.New("gemini client is not configured")
	}

	parts := []*genai.Part{
		{Text: buildPrompt(notes)},
		{InlineData: &genai.Blob{Data: imageData, MIMEType: http.DetectContentType(imageData)}},
	}

	result, err := b.client.Models.GenerateContent(ctx, b.model, []*genai.Content{{Parts: parts}}, generationConfig())
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text, err := result.Text()
	if err != nil {
		return nil, fmt.Errorf("read response text: %w", err)
	}

	raws, err := decodeDefects(text)
	if err != nil {
		return nil, err
	}
	return toCandidates(raws, GeminiBackendName), nil
}

func buildPrompt(notes string) string {
	prompt := `You are a certified residential property inspector. Examine the photo and list every visible defect.

For each defect report:
- type: a short category such as "Structural Crack", "Water Damage", "Electrical Hazard", "Plumbing Leak", "Paint Deterioration", "Roof Damage", "Window Damage", "HVAC Issue", "Foundation Settlement" or "Moisture Intrusion"
- severity: High, Medium or Low
- location: where in the property the defect is
- confidence: your confidence between 0 and 1
- description: one sentence explaining what you see
- code_ref: the most relevant International Residential Code section (for example R403.1), or an empty string
- estimated_cost: repair cost estimate in INR as a whole number

Return at most 5 defects. Return an empty list if the photo shows no defects.`
	if notes != "" {
		prompt += "\n\nInspector notes:\n" + notes
	}
	return prompt
}

func generationConfig() *genai.GenerateContentConfig {
	responseSchema := &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"type":           {Type: genai.TypeString, Description: "defect category"},
				"severity":       {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
				"location":       {Type: genai.TypeString},
				"confidence":     {Type: genai.TypeNumber, Description: "confidence between 0 and 1"},
				"description":    {Type: genai.TypeString},
				"code_ref":       {Type: genai.TypeString, Description: "IRC section id"},
				"estimated_cost": {Type: genai.TypeNumber, Description: "repair cost estimate"},
			},
			Required: []string{"type", "severity", "location", "confidence", "description"},
		},
	}
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}
}

// Проверка реализации интерфейса
var _ port.AnalysisBackend = (*GeminiBackend)(nil)
