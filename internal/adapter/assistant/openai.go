// Package assistant turns natural-language requests into ledger command
// proposals with the OpenAI Responses API. Proposals are returned to the
// caller; nothing here writes to the ledger.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"github.com/iho/qatledger/internal/usecase"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// ErrEmptyResponse is returned when the model produced no output text.
var ErrEmptyResponse = errors.New("assistant: empty response")

// OpenAI implements usecase.Assistant.
type OpenAI struct {
	client openai.Client
	model  string
	schema map[string]any
}

// NewOpenAI creates an assistant for apiKey. Extra request options are
// applied to every call (base URL, retries, HTTP client).
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("assistant: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	schema, err := CommandSchema()
	if err != nil {
		return nil, err
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		schema: schema,
	}, nil
}

// CommandSchema reflects usecase.Command into the strict JSON schema the
// model must answer with.
func CommandSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	raw, err := json.Marshal(reflector.Reflect(&usecase.Command{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	// The Responses API rejects the draft marker.
	delete(schema, "$schema")
	delete(schema, "$id")

	return schema, nil
}

// Propose asks the model for one command.
func (a *OpenAI) Propose(ctx context.Context, req usecase.AssistantRequest) (*usecase.Command, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "ledger_command",
					Strict:      param.NewOpt(true),
					Schema:      a.schema,
					Description: param.NewOpt("One ledger operation for a qat trading agency"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}

	var cmd usecase.Command
	if err := json.Unmarshal([]byte(content), &cmd); err != nil {
		return nil, fmt.Errorf("failed to parse proposal: %w", err)
	}

	return &cmd, nil
}

func buildPrompt(req usecase.AssistantRequest) (string, error) {
	ledger, err := json.MarshalIndent(promptContext(req.Context), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger context: %w", err)
	}

	ops := make([]string, 0, len(usecase.Operations()))
	for _, op := range usecase.Operations() {
		ops = append(ops, string(op))
	}

	return fmt.Sprintf(`You record operations for a qat trading agency.
Turn the request into exactly one ledger command.
Rules:
1. operation must be one of: %s.
2. Currencies are YER, SAR or OMR. Never convert between them.
3. Amounts and prices are decimal strings such as "1500" or "12.5".
4. Use party and item names exactly as listed below. Prefer IDs when the request names a known record.
5. Leave fields the operation does not use empty. quantity is 0 for vouchers and opening balances.
6. Sales go to customers, purchases come from suppliers. Receipts come from customers, payments go to suppliers.

Ledger:
%s

Request: %s`, strings.Join(ops, ", "), ledger, req.Text), nil
}

type promptParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type promptItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stock    int64  `json:"stock"`
	Currency string `json:"currency"`
}

type promptLedger struct {
	Customers []promptParty `json:"customers"`
	Suppliers []promptParty `json:"suppliers"`
	Items     []promptItem  `json:"items"`
	Summary   any           `json:"summary"`
	Recent    []string      `json:"recent_activity"`
}

// promptContext keeps only what the model needs to resolve names.
func promptContext(c usecase.AssistantContext) promptLedger {
	out := promptLedger{Summary: c.Summary}
	for _, p := range c.Customers {
		out.Customers = append(out.Customers, promptParty{ID: p.ID, Name: p.Name})
	}
	for _, p := range c.Suppliers {
		out.Suppliers = append(out.Suppliers, promptParty{ID: p.ID, Name: p.Name})
	}
	for _, i := range c.Items {
		out.Items = append(out.Items, promptItem{ID: i.ID, Name: i.Name, Stock: i.Stock, Currency: string(i.Currency)})
	}
	for _, e := range c.Recent {
		out.Recent = append(out.Recent, e.Detail)
	}
	return out
}
