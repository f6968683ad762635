package analysis

// CanonicalDisclaimer is attached to every condition assessment that lacks one.
const CanonicalDisclaimer = "Visual estimate only. Have a qualified technician inspect the tire before making safety decisions."

const (
	StatusGreen = "green"
	StatusAmber = "amber"
	StatusRed   = "red"
)

// Result is the normalized analysis returned to callers.
type Result struct {
	Core         CoreSpec     `json:"core"`
	Condition    Condition    `json:"condition"`
	Context      ContextInfo  `json:"context"`
	Availability Availability `json:"availability"`
}

// CoreSpec is the tire specification read from the sidewall. Every field
// may be absent.
type CoreSpec struct {
	Size        *string `json:"size"`
	LoadIndex   *string `json:"loadIndex"`
	SpeedRating *string `json:"speedRating"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	DOT         *DOT    `json:"dot"`
}

// DOT holds the manufacture date code.
type DOT struct {
	Week        *string `json:"week"`
	Year        *string `json:"year"`
	Description *string `json:"description"`
}

// Condition is the visual condition assessment.
type Condition struct {
	Status     string   `json:"status"`
	Label      string   `json:"label"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
	Disclaimer string   `json:"disclaimer"`
}

// ContextInfo carries derived age information and fitment hints.
type ContextInfo struct {
	AgeYears      *float64 `json:"ageYears"`
	AgeAdvisory   *string  `json:"ageAdvisory"`
	CommonFitment []string `json:"commonFitment"`
}

// Availability summarizes registry stock for the resolved size.
type Availability struct {
	ShopsWithSize  int         `json:"shopsWithSize"`
	InventoryCount int         `json:"inventoryCount"`
	PriceRange     *PriceRange `json:"priceRange"`
	SamplePrices   []float64   `json:"samplePrices"`
}

// PriceRange is present only when at least one tire matched.
type PriceRange struct {
	Currency string  `json:"currency"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

func strPtr(s string) *string {
	return &s
}
