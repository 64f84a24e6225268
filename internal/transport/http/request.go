package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"spotcli/internal/trading"
	"spotcli/pkg/contracts/domain"
)

// decodeOptionalJSON decodes a JSON body into v. A missing or empty body
// leaves v at its zero value so every POST endpoint works without one.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// AnalyzeRequest is the body shared by the analysis endpoints. Dates are
// ISO strings on the wire and inclusive on both ends once parsed.
type AnalyzeRequest struct {
	MergedPath string `json:"merged_path" validate:"omitempty"`

	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
	PriceColumn string   `json:"price_column" validate:"omitempty"`

	StartDate string `json:"start_date" validate:"omitempty,iso8601"`
	EndDate   string `json:"end_date" validate:"omitempty,iso8601"`

	Company   *string `json:"company"`
	Unit      *string `json:"unit"`
	UnitGroup *string `json:"unit_group"`

	IncludeMinBoundary bool `json:"include_min_boundary"`
	IncludeMaxBoundary bool `json:"include_max_boundary"`
}

// knownPriceColumns are the columns the price filter may target.
var knownPriceColumns = map[string]bool{
	domain.ColForecastNodePrice: true,
	domain.ColIntradayNodePrice: true,
	domain.ColCrossDAPrice:      true,
	domain.ColCrossRTPrice:      true,
	domain.ColIntraMLTPrice:     true,
	domain.ColCrossMLTPrice:     true,
}

// Criteria converts the wire request into filter criteria.
func (req AnalyzeRequest) Criteria() (trading.FilterCriteria, error) {
	criteria := trading.FilterCriteria{
		MinPrice:           req.MinPrice,
		MaxPrice:           req.MaxPrice,
		PriceColumn:        req.PriceColumn,
		Company:            req.Company,
		Unit:               req.Unit,
		UnitGroup:          req.UnitGroup,
		IncludeMinBoundary: req.IncludeMinBoundary,
		IncludeMaxBoundary: req.IncludeMaxBoundary,
	}

	if req.StartDate != "" {
		d, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return trading.FilterCriteria{}, err
		}
		criteria.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return trading.FilterCriteria{}, err
		}
		criteria.EndDate = &d
	}

	return criteria, nil
}
