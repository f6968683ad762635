package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelOutputDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "prose", raw: "I could not read the tire, sorry."},
		{name: "truncated", raw: `{"core":{"size":"205/55R16"`},
		{name: "array", raw: `[{"core":{}}]`},
		{name: "null", raw: "null"},
		{name: "fenced", raw: "```json\n{\"core\":{}}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParseModelOutput(tt.raw)
			empty, ok := outcome.(ParsedEmpty)
			require.True(t, ok, "expected ParsedEmpty, got %T", outcome)
			assert.NotEmpty(t, empty.Reason)
			assert.Equal(t, ModelDoc{}, Doc(outcome))
		})
	}
}

func TestParseModelOutputSectionsDecodeIndependently(t *testing.T) {
	raw := `{
		"core": {"size": "205/55R16", "dot": {"week": 22, "year": "2019"}},
		"condition": "looks fine",
		"context": {"commonFitment": ["compact sedans", "", null]},
		"rawText": "205/55R16 91V"
	}`
	outcome := ParseModelOutput(raw)
	ok, isOK := outcome.(ParsedOK)
	require.True(t, isOK)

	doc := ok.Doc
	require.NotNil(t, doc.Core)
	assert.Equal(t, "205/55R16", *doc.Core.Size)
	assert.Nil(t, doc.Core.LoadIndex)
	require.NotNil(t, doc.Core.DOT)
	assert.Equal(t, "22", *doc.Core.DOT.Week)
	assert.Nil(t, doc.Condition, "condition with the wrong shape is absent")
	require.NotNil(t, doc.Context)
	assert.Equal(t, []string{"compact sedans", ""}, doc.Context.CommonFitment)
	assert.Equal(t, "205/55R16 91V", doc.RawText)
}

func TestParseModelOutputBlankStringsAreAbsent(t *testing.T) {
	outcome := ParseModelOutput(`{"core": {"size": "  ", "brand": null, "model": "Primacy"}}`)
	doc := Doc(outcome)
	require.NotNil(t, doc.Core)
	assert.Nil(t, doc.Core.Size)
	assert.Nil(t, doc.Core.Brand)
	assert.Equal(t, "Primacy", *doc.Core.Model)
}

func TestParseModelOutputConfidenceAsString(t *testing.T) {
	doc := Doc(ParseModelOutput(`{"condition": {"status": "green", "confidence": "0.9"}}`))
	require.NotNil(t, doc.Condition)
	require.NotNil(t, doc.Condition.Confidence)
	assert.InDelta(t, 0.9, *doc.Condition.Confidence, 1e-9)
}

func TestParseModelOutputMistypedFieldsDropAlone(t *testing.T) {
	raw := `{
		"core": {"size": "205/55R16", "brand": true, "model": {"name": "x"}, "dot": {"week": 22, "year": [2019]}},
		"condition": {"status": "red", "label": "Cords visible", "reasons": "cord exposed", "confidence": "high", "disclaimer": "d"},
		"context": {"ageYears": "soon", "ageAdvisory": "Replace", "commonFitment": "sedans"}
	}`
	doc := Doc(ParseModelOutput(raw))

	require.NotNil(t, doc.Core)
	assert.Equal(t, "205/55R16", *doc.Core.Size)
	assert.Nil(t, doc.Core.Brand)
	assert.Nil(t, doc.Core.Model)
	require.NotNil(t, doc.Core.DOT)
	assert.Equal(t, "22", *doc.Core.DOT.Week)
	assert.Nil(t, doc.Core.DOT.Year)

	require.NotNil(t, doc.Condition)
	assert.Equal(t, "red", doc.Condition.Status)
	assert.Equal(t, "Cords visible", doc.Condition.Label)
	assert.Nil(t, doc.Condition.Reasons)
	assert.Nil(t, doc.Condition.Confidence)
	assert.Equal(t, "d", doc.Condition.Disclaimer)

	require.NotNil(t, doc.Context)
	assert.Nil(t, doc.Context.AgeYears)
	assert.Equal(t, "Replace", *doc.Context.AgeAdvisory)
	assert.Equal(t, []string{}, doc.Context.CommonFitment)

	cond := NormalizeCondition(doc.Condition)
	assert.Equal(t, StatusRed, cond.Status)
	assert.Equal(t, "Cords visible", cond.Label)
}

func TestParseModelOutputMixedListElements(t *testing.T) {
	doc := Doc(ParseModelOutput(`{"condition": {"status": "amber", "reasons": ["worn", {"x": 1}, null, 3, false]}}`))
	require.NotNil(t, doc.Condition)
	assert.Equal(t, []string{"worn", "3"}, doc.Condition.Reasons)
}

func TestParseModelOutputRejectsNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "nan", value: `"NaN"`},
		{name: "inf", value: `"Inf"`},
		{name: "negative infinity", value: `"-Infinity"`},
		{name: "overflow", value: `1e400`},
		{name: "overflow string", value: `"1e400"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"condition": {"status": "green", "confidence": ` + tt.value + `}, "context": {"ageYears": ` + tt.value + `}}`
			doc := Doc(ParseModelOutput(raw))
			require.NotNil(t, doc.Condition)
			assert.Equal(t, "green", doc.Condition.Status)
			assert.Nil(t, doc.Condition.Confidence)
			require.NotNil(t, doc.Context)
			assert.Nil(t, doc.Context.AgeYears)
		})
	}
}
