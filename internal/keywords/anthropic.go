package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

const maxKeywordsPerItem = 15

const systemPrompt = `Eres un experto en clasificación arancelaria para envíos de courier.
Tu tarea es generar palabras clave de búsqueda para una partida arancelaria:
los términos cotidianos que un cliente escribiría para encontrar el producto.

Reglas:
- Genera entre 5 y 15 palabras clave en español, en minúsculas.
- Incluye sinónimos, nombres comunes y marcas genéricas del tipo de producto.
- Si la partida es residual ("los demás"), NO incluyas términos de la lista de exclusiones:
  esos productos pertenecen a otras partidas.
- No repitas el código arancelario.

Responde SOLO con un arreglo JSON de cadenas (sin markdown):
["palabra uno", "palabra dos", ...]`

// AnthropicGenerator asks Claude for customer-facing search keywords.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

func NewAnthropicGenerator(apiKey, model string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key cannot be empty")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (g *AnthropicGenerator) Generate(ctx context.Context, item Context) ([]string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(item))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return ParseKeywordReply(block.Text)
		}
	}
	return nil, fmt.Errorf("no text content in anthropic response")
}

func buildUserPrompt(item Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Partida arancelaria: %s\n", item.Code)
	fmt.Fprintf(&b, "Descripción: %s\n", item.Description)
	if item.ParentDescription != "" {
		fmt.Fprintf(&b, "Categoría superior: %s\n", item.ParentDescription)
	}
	if len(item.SiblingDescriptions) > 0 {
		b.WriteString("Partidas hermanas (descripciones específicas):\n")
		for _, desc := range item.SiblingDescriptions {
			fmt.Fprintf(&b, "- %s\n", desc)
		}
	}
	if item.IsResidual {
		if len(item.ExclusionTerms) > 0 {
			b.WriteString("Esta es una partida residual. Exclusiones (productos de otras partidas):\n")
			for _, term := range item.ExclusionTerms {
				fmt.Fprintf(&b, "- %s\n", term)
			}
		}
	} else if len(item.SiblingDescriptions) > 0 {
		b.WriteString("EVITA palabras clave que describan mejor a las partidas hermanas.\n")
	}
	b.WriteString("\nGenera las palabras clave de búsqueda.")
	return b.String()
}

// ParseKeywordReply extracts the keyword list from a model reply, tolerating
// markdown code fences around the JSON array. Keywords are lowercased,
// trimmed, deduplicated and sorted.
func ParseKeywordReply(responseText string) ([]string, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var raw []string
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		return nil, fmt.Errorf("parsing keyword response: %w (response: %s)", err, responseText)
	}

	seen := make(map[string]struct{}, len(raw))
	for _, kw := range raw {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		seen[kw] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for kw := range seen {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	if len(keywords) > maxKeywordsPerItem {
		keywords = keywords[:maxKeywordsPerItem]
	}
	return keywords, nil
}
