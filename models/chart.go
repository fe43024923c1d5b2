package models

// ChartPattern is a recognised candlestick formation.
type ChartPattern struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Signal     Signal  `json:"signal"`
}

// PriceLevel is a support or resistance price with a 1-10 strength.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Strength int     `json:"strength"`
}

// SupportResistance is a detected level together with its side.
type SupportResistance struct {
	Price    float64 `json:"price"`
	Strength int     `json:"strength"`
	Type     string  `json:"type"`
	Touches  int     `json:"touches"`
}

const (
	LevelSupport    = "SUPPORT"
	LevelResistance = "RESISTANCE"
)

// ChartContext is the chart analyzer's contribution to a decision. The zero
// value is a valid empty context.
type ChartContext struct {
	Patterns          []ChartPattern      `json:"patterns"`
	NearestSupport    *PriceLevel         `json:"nearest_support,omitempty"`
	NearestResistance *PriceLevel         `json:"nearest_resistance,omitempty"`
	Levels            []SupportResistance `json:"levels,omitempty"`
}

// SupportPrice returns the nearest support price or nil.
func (c ChartContext) SupportPrice() *float64 {
	if c.NearestSupport == nil {
		return nil
	}
	p := c.NearestSupport.Price
	return &p
}

// ResistancePrice returns the nearest resistance price or nil.
func (c ChartContext) ResistancePrice() *float64 {
	if c.NearestResistance == nil {
		return nil
	}
	p := c.NearestResistance.Price
	return &p
}
