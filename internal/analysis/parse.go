package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseOutcome is the result of decoding untrusted model output. It is
// either ParsedOK or ParsedEmpty.
type ParseOutcome interface {
	parseOutcome()
}

// ParsedOK holds a decoded model document. Sections may still be absent.
type ParsedOK struct {
	Doc ModelDoc
}

// ParsedEmpty means nothing usable could be decoded.
type ParsedEmpty struct {
	Reason string
}

func (ParsedOK) parseOutcome()    {}
func (ParsedEmpty) parseOutcome() {}

// ModelDoc is the decoded model output before normalization. A nil section
// was absent or not an object. Fields inside a section decode on their own,
// so one mistyped field only loses that field.
type ModelDoc struct {
	Core      *CoreSpec
	Condition *ConditionInput
	Context   *ContextInfo
	RawText   string
}

// ConditionInput is the condition section as the model sent it.
type ConditionInput struct {
	Status     string
	Label      string
	Reasons    []string
	Confidence *float64
	Disclaimer string
}

// Doc returns the decoded document, or an empty one for ParsedEmpty.
func Doc(outcome ParseOutcome) ModelDoc {
	if ok, isOK := outcome.(ParsedOK); isOK {
		return ok.Doc
	}
	return ModelDoc{}
}

// ParseModelOutput strictly decodes raw as a JSON object. It never fails;
// undecodable input yields ParsedEmpty.
func ParseModelOutput(raw string) ParseOutcome {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParsedEmpty{Reason: "empty output"}
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &sections); err != nil {
		return ParsedEmpty{Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	if sections == nil {
		return ParsedEmpty{Reason: "top level is null"}
	}

	var doc ModelDoc
	if fields := objectFields(sections["core"]); fields != nil {
		doc.Core = decodeCore(fields)
	}
	if fields := objectFields(sections["condition"]); fields != nil {
		doc.Condition = decodeCondition(fields)
	}
	if fields := objectFields(sections["context"]); fields != nil {
		doc.Context = decodeContext(fields)
	}
	doc.RawText = textField(sections, "rawText")
	return ParsedOK{Doc: doc}
}

// objectFields splits a section into its fields. It returns nil when the
// section is absent, null or not an object.
func objectFields(raw json.RawMessage) map[string]json.RawMessage {
	if isNull(raw) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// flexString accepts a JSON string or number. null decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(n.String())
		return nil
	}
}

// flexFloat accepts a finite JSON number or numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v float64
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		v = parsed
	} else if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite number %s", data)
	}
	*f = flexFloat(v)
	return nil
}

// textField decodes one string field. A missing or mistyped field is "".
func textField(fields map[string]json.RawMessage, key string) string {
	var s flexString
	if isNull(fields[key]) || json.Unmarshal(fields[key], &s) != nil {
		return ""
	}
	return string(s)
}

// optionalField is textField with blank values mapped to nil.
func optionalField(fields map[string]json.RawMessage, key string) *string {
	s := textField(fields, key)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strPtr(s)
}

func numberField(fields map[string]json.RawMessage, key string) *float64 {
	var f flexFloat
	if isNull(fields[key]) || json.Unmarshal(fields[key], &f) != nil {
		return nil
	}
	v := float64(f)
	return &v
}

// listField decodes an array of strings, skipping null and mistyped
// elements. A value that is not an array yields nil.
func listField(fields map[string]json.RawMessage, key string) []string {
	var items []json.RawMessage
	if isNull(fields[key]) || json.Unmarshal(fields[key], &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s flexString
		if isNull(item) || json.Unmarshal(item, &s) != nil {
			continue
		}
		out = append(out, string(s))
	}
	return out
}

func decodeCore(fields map[string]json.RawMessage) *CoreSpec {
	core := &CoreSpec{
		Size:        optionalField(fields, "size"),
		LoadIndex:   optionalField(fields, "loadIndex"),
		SpeedRating: optionalField(fields, "speedRating"),
		Brand:       optionalField(fields, "brand"),
		Model:       optionalField(fields, "model"),
	}
	if dot := objectFields(fields["dot"]); dot != nil {
		core.DOT = &DOT{
			Week:        optionalField(dot, "week"),
			Year:        optionalField(dot, "year"),
			Description: optionalField(dot, "description"),
		}
	}
	return core
}

func decodeCondition(fields map[string]json.RawMessage) *ConditionInput {
	return &ConditionInput{
		Status:     textField(fields, "status"),
		Label:      textField(fields, "label"),
		Reasons:    listField(fields, "reasons"),
		Confidence: numberField(fields, "confidence"),
		Disclaimer: textField(fields, "disclaimer"),
	}
}

func decodeContext(fields map[string]json.RawMessage) *ContextInfo {
	info := &ContextInfo{
		AgeYears:      numberField(fields, "ageYears"),
		AgeAdvisory:   optionalField(fields, "ageAdvisory"),
		CommonFitment: listField(fields, "commonFitment"),
	}
	if info.CommonFitment == nil {
		info.CommonFitment = []string{}
	}
	return info
}
