package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cryptofolio/cryptofolio/internal/logging"
)

// GeminiService implements Service against the Google Gemini API. The model
// receives the full transaction list as JSON and must answer with strict
// JSON matching the Response shape.
type GeminiService struct {
	apiKey string
	model  string
	log    logging.Logger
}

// NewGeminiService creates a Gemini-backed classification service.
func NewGeminiService(apiKey, model string, logger logging.Logger) *GeminiService {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
		log:    logger,
	}
}

var _ Service = (*GeminiService)(nil)

const promptPreamble = `You are a cryptocurrency transaction classifier.
For every transaction in the JSON below, assign exactly one category from:
"staking rewards", "airdrop", "salary", "trading profit" (inflows) or
"withdrawal", "transfer", "payment", "trading loss" (outflows), and set
"type" to "inflow" or "outflow" to match the category.

Return ONLY raw JSON of the form
{"categorizedTransactions":[{"date":...,"description":...,"amount":...,"currency":...,"category":...,"type":...}]}
with one entry per input transaction, in any order. No Markdown, no fences.

Transactions:
`

// Categorize sends the transactions to Gemini and decodes its JSON answer.
func (s *GeminiService) Categorize(ctx context.Context, req Request) (Response, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode transactions: %w", err)
	}

	model := client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, genai.Text(promptPreamble+string(payload)))
	if err != nil {
		if isQuotaError(err) {
			return Response{}, fmt.Errorf("%w: %v", ErrInputTooLarge, err)
		}
		return Response{}, fmt.Errorf("gemini request failed: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return Response{}, fmt.Errorf("%w: empty response from model", ErrInvalidResponse)
	}

	var out Response
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	s.log.Debug("Gemini classification completed",
		logging.Field{Key: logging.FieldCount, Value: len(out.CategorizedTransactions)})
	return out, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}

// stripFences removes Markdown code fences the model may add despite
// instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// isQuotaError recognizes size and quota rejections from the API so they can
// be surfaced as a reduce-your-input failure instead of a generic one.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"quota", "resource exhausted", "429", "exceeds the maximum", "too large", "token count"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
