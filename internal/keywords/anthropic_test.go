package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeywordReply(t *testing.T) {
	keywords, err := ParseKeywordReply(`["zapatos", "calzado", "tenis"]`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"calzado", "tenis", "zapatos"}, keywords)
}

func TestParseKeywordReply_StripsCodeFences(t *testing.T) {
	reply := "```json\n[\"zapatos\", \"calzado\"]\n```"
	keywords, err := ParseKeywordReply(reply)
	assert.NoError(t, err)
	assert.Equal(t, []string{"calzado", "zapatos"}, keywords)
}

func TestParseKeywordReply_NormalizesAndDedupes(t *testing.T) {
	keywords, err := ParseKeywordReply(`["  Zapatos ", "zapatos", "ZAPATOS", "", "calzado"]`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"calzado", "zapatos"}, keywords)
}

func TestParseKeywordReply_CapsListLength(t *testing.T) {
	reply := `["k01","k02","k03","k04","k05","k06","k07","k08","k09","k10","k11","k12","k13","k14","k15","k16","k17"]`
	keywords, err := ParseKeywordReply(reply)
	assert.NoError(t, err)
	assert.Len(t, keywords, maxKeywordsPerItem)
}

func TestParseKeywordReply_RejectsNonJSON(t *testing.T) {
	_, err := ParseKeywordReply("Claro, aquí están las palabras clave: zapatos, calzado")
	assert.Error(t, err)
}

func TestBuildUserPrompt_IncludesExclusions(t *testing.T) {
	prompt := buildUserPrompt(Context{
		Code:              "6402.99.90.00",
		Description:       "Los demás | Calzado",
		ParentDescription: "Calzado",
		IsResidual:        true,
		ExclusionTerms:    []string{"sandalias", "zapatos deportivos"},
	})

	assert.Contains(t, prompt, "6402.99.90.00")
	assert.Contains(t, prompt, "Calzado")
	assert.Contains(t, prompt, "- sandalias")
	assert.Contains(t, prompt, "- zapatos deportivos")
}

func TestBuildUserPrompt_OmitsExclusionsForSpecificItems(t *testing.T) {
	prompt := buildUserPrompt(Context{
		Code:        "0101.21.00.00",
		Description: "Reproductores de raza pura | Caballos",
	})

	assert.NotContains(t, prompt, "Exclusiones")
	assert.NotContains(t, prompt, "Partidas hermanas")
}

func TestBuildUserPrompt_ListsSiblingDescriptions(t *testing.T) {
	prompt := buildUserPrompt(Context{
		Code:                "6402.99.10.00",
		Description:         "Zapatos deportivos | Calzado",
		SiblingDescriptions: []string{"Sandalias", "Los demás"},
	})

	assert.Contains(t, prompt, "Partidas hermanas")
	assert.Contains(t, prompt, "- Sandalias")
	assert.Contains(t, prompt, "- Los demás")
	assert.Contains(t, prompt, "EVITA palabras clave que describan mejor a las partidas hermanas")
}

func TestBuildUserPrompt_ResidualItemSkipsSiblingAvoidance(t *testing.T) {
	prompt := buildUserPrompt(Context{
		Code:                "6402.99.90.00",
		Description:         "Los demás | Calzado",
		IsResidual:          true,
		SiblingDescriptions: []string{"Sandalias"},
		ExclusionTerms:      []string{"sandalias"},
	})

	assert.Contains(t, prompt, "Partidas hermanas")
	assert.Contains(t, prompt, "Exclusiones")
	assert.NotContains(t, prompt, "EVITA palabras clave")
}
