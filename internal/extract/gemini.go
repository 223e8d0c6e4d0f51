package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cardreader/internal/logger"
	"cardreader/internal/models"
)

const DefaultGeminiModel = "gemini-2.0-flash-lite"

const geminiPrompt = `You are an expert data extraction assistant. Extract the contact details from the following raw OCR text of a business card and return them as a clean JSON object.

Rules:
1. The fields are: "name", "designation", "email", "mobile", "address" and "airline".
2. If a field cannot be found in the text, its value must be null.
3. Respond with ONLY the JSON object, no explanations and no text around it.
4. Copy values as they appear; do not invent or reformat them.

Raw text:
"""
%s
"""`

// Gemini asks a Gemini model for the card fields. Whatever the model leaves
// empty is filled from Fields, and any model failure degrades to Fields.
type Gemini struct {
	log      logger.Logger
	client   *genai.Client
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGemini connects to the Gemini API with apiKey.
func NewGemini(ctx context.Context, apiKey, model string, log logger.Logger) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to init Gemini client: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.GenerationConfig = genai.GenerationConfig{ResponseMIMEType: "application/json"}

	return &Gemini{
		log:    log,
		client: client,
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
			if err != nil {
				return "", fmt.Errorf("gemini generation failed: %w", err)
			}
			if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
				return "", errors.New("empty response from Gemini")
			}
			var sb strings.Builder
			for _, part := range resp.Candidates[0].Content.Parts {
				if t, ok := part.(genai.Text); ok {
					sb.WriteString(string(t))
				} else {
					sb.WriteString(fmt.Sprint(part))
				}
			}
			return sb.String(), nil
		},
	}, nil
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Extract always returns a record; model failures are logged and the regex
// result is used instead.
func (g *Gemini) Extract(ctx context.Context, text string) (models.CardRecord, error) {
	base := Fields(text)
	if strings.TrimSpace(text) == "" {
		return base, nil
	}

	raw, err := g.generate(ctx, fmt.Sprintf(geminiPrompt, text))
	if err != nil {
		g.log.Warn("gemini extraction failed, using regex fields", "error", err)
		return base, nil
	}
	parsed, err := parseGeminiJSON(raw)
	if err != nil {
		g.log.Warn("unusable gemini response, using regex fields", "error", err)
		return base, nil
	}
	return merge(parsed, base), nil
}

func parseGeminiJSON(raw string) (models.CardRecord, error) {
	var out models.CardRecord

	s := stripCodeFences(raw)
	if candidate, ok := extractBalanced(s, '{', '}'); ok {
		s = candidate
	}
	if s == "" {
		return out, errors.New("no text in Gemini response")
	}

	// Nulls and non-string values are tolerated.
	var tmp map[string]any
	if err := json.Unmarshal([]byte(s), &tmp); err != nil {
		return out, fmt.Errorf("failed to parse Gemini JSON: %w", err)
	}
	get := func(k string) string {
		v, ok := tmp[k]
		if !ok || v == nil {
			return ""
		}
		if t, ok := v.(string); ok {
			return strings.TrimSpace(t)
		}
		b, _ := json.Marshal(v)
		return strings.TrimSpace(string(b))
	}

	out.Name = get("name")
	out.Designation = get("designation")
	out.Email = get("email")
	out.Mobile = get("mobile")
	out.Address = get("address")
	out.Airline = get("airline")
	return out, nil
}

func merge(primary, fallback models.CardRecord) models.CardRecord {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return models.CardRecord{
		Name:        pick(primary.Name, fallback.Name),
		Designation: pick(primary.Designation, fallback.Designation),
		Email:       pick(primary.Email, fallback.Email),
		Mobile:      pick(primary.Mobile, fallback.Mobile),
		Address:     pick(primary.Address, fallback.Address),
		// The keyword list is authoritative for airlines.
		Airline: pick(fallback.Airline, primary.Airline),
	}
}

// stripCodeFences removes surrounding Markdown fences like ```json ... ```.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	if i := strings.IndexByte(s, '\n'); i != -1 {
		if first := strings.TrimSpace(s[:i]); len(first) > 0 && len(first) < 20 {
			s = s[i+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func extractBalanced(s string, open, close rune) (string, bool) {
	start := -1
	depth := 0
	for i, r := range s {
		switch {
		case r == open:
			if depth == 0 {
				start = i
			}
			depth++
		case r == close && depth > 0:
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
