package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"newswire/config"
)

// TitleResult is the model output for a title translation pass.
type TitleResult struct {
	TitleTranslated string  `json:"title_translated"`
	QualityScore    float64 `json:"quality_score"`
}

// ContentResult carries the per-platform rewrites. Only the fields for
// the requested platforms are populated.
type ContentResult struct {
	ContentTranslated string `json:"content_translated,omitempty"`
	ContentTelegram   string `json:"content_telegram,omitempty"`
	ContentInstagram  string `json:"content_instagram,omitempty"`
	ContentTwitter    string `json:"content_twitter,omitempty"`
}

const TITLE_INSTRUCTION = `
You are a news title translation assistant. Translate the provided article title into %s.
The response MUST be a valid JSON object with two keys:
1.  title_translated: The translated title, natural and idiomatic in the target language.
2.  quality_score: A number between 0 and 10 rating how newsworthy and well-formed the source title is. Use 0 for spam or unusable titles.
You MUST NOT wrap the JSON output in a markdown code block (e.g., ` + "```json ... ```" + `). The response should contain ONLY the raw JSON string.
`

const CONTENT_INSTRUCTION_HEADER = `
You are a news content adaptation assistant. Translate the provided article body into %s and adapt it for the requested platforms.
The response MUST be a valid JSON object with exactly these keys:
`

const CONTENT_INSTRUCTION_FOOTER = `
You MUST NOT wrap the JSON output in a markdown code block (e.g., ` + "```json ... ```" + `). The response should contain ONLY the raw JSON string.
Keep the meaning of the original. Do not invent facts.
`

var platformFieldSpecs = map[string]string{
	"telegram":  `content_telegram: The article rewritten for a Telegram channel post, at most 3500 characters, plain text with short paragraphs.`,
	"instagram": `content_instagram: The article rewritten as an Instagram caption, at most 2000 characters, engaging tone, no markdown.`,
	"twitter":   `content_twitter: The article compressed into a thread-opening post of at most 270 characters.`,
}

// Translator wraps a shared Gemini client.
type Translator struct {
	client         *genai.Client
	model          string
	targetLanguage string
}

func NewTranslator(ctx context.Context) (*Translator, error) {
	cfg := config.GetConfig()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, err
	}
	return &Translator{
		client:         client,
		model:          cfg.GeminiModel,
		targetLanguage: cfg.Gemini.TargetLanguage,
	}, nil
}

// TranslateTitle translates one title and scores the source article.
func (t *Translator) TranslateTitle(ctx context.Context, title string) (*TitleResult, error) {
	instruction := fmt.Sprintf(TITLE_INSTRUCTION, t.targetLanguage)

	raw, err := t.generate(ctx, instruction, title)
	if err != nil {
		return nil, err
	}

	var out TitleResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("transform: bad title response: %w", err)
	}
	if out.QualityScore < 0 {
		out.QualityScore = 0
	}
	if out.QualityScore > 10 {
		out.QualityScore = 10
	}
	return &out, nil
}

// GenerateContent produces the full translation plus per-platform rewrites
// for the requested platforms. The full body translation is included only
// when every known platform was requested.
func (t *Translator) GenerateContent(ctx context.Context, content string, platforms []string) (*ContentResult, error) {
	instruction, err := ContentInstruction(t.targetLanguage, platforms)
	if err != nil {
		return nil, err
	}

	raw, err := t.generate(ctx, instruction, content)
	if err != nil {
		return nil, err
	}

	var out ContentResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("transform: bad content response: %w", err)
	}
	return &out, nil
}

func (t *Translator) generate(ctx context.Context, instruction, text string) (string, error) {
	result, err := t.client.Models.GenerateContent(
		ctx,
		t.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		},
	)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// ContentInstruction renders the system instruction for a platform set.
func ContentInstruction(targetLanguage string, platforms []string) (string, error) {
	if len(platforms) == 0 {
		return "", fmt.Errorf("transform: no platforms requested")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(CONTENT_INSTRUCTION_HEADER, targetLanguage))

	n := 1
	requested := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		spec, ok := platformFieldSpecs[p]
		if !ok {
			return "", fmt.Errorf("transform: unknown platform %q", p)
		}
		if requested[p] {
			continue
		}
		requested[p] = true
		b.WriteString(fmt.Sprintf("%d.  %s\n", n, spec))
		n++
	}

	if len(requested) == len(platformFieldSpecs) {
		b.WriteString(fmt.Sprintf("%d.  content_translated: The complete article translated into %s, preserving paragraph structure.\n", n, targetLanguage))
	}

	b.WriteString(CONTENT_INSTRUCTION_FOOTER)
	return b.String(), nil
}
