package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// PricingAnomaly annotates a snapshot with a non-fatal pricing inconsistency.
type PricingAnomaly struct {
	Type    enums.PricingAnomalyType `json:"type"`
	Message string                   `json:"message"`
	Amount  decimal.Decimal          `json:"amount"`
}

// PricingAnomalies is a slice marshaled as JSONB.
type PricingAnomalies []PricingAnomaly

// Value serializes the anomalies to JSON.
func (p PricingAnomalies) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan decodes JSONB into the anomaly slice. An empty array scans to nil.
func (p *PricingAnomalies) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded PricingAnomalies
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	if len(decoded) == 0 {
		decoded = nil
	}
	*p = decoded
	return nil
}
