package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculationFlags_Request(t *testing.T) {
	f := calculationFlags{
		start:       "2024-01-01",
		end:         "2024-02-01",
		periodType:  "monthly",
		method:      "modified_dietz",
		benchmark:   "SPX",
		attribution: true,
		dimension:   "sector",
		timing:      "actual_time",
	}

	body := f.request("6f1c1a9e-3a52-4c7e-9d0b-2b1f0c6a7e11")

	assert.Equal(t, "6f1c1a9e-3a52-4c7e-9d0b-2b1f0c6a7e11", body["portfolio_id"])
	assert.Equal(t, "modified_dietz", body["calculation_method"])
	assert.Equal(t, true, body["include_attribution"])
	assert.Equal(t, "sector", body["attribution_dimension"])
}

func TestCalculationFlags_BatchRequest(t *testing.T) {
	f := calculationFlags{start: "2024-01-01", end: "2024-04-01", periodType: "quarterly"}

	req, err := f.batchRequest([]string{"a", "b", "c"})

	require.NoError(t, err)
	items := req.GetFields()["requests"].GetListValue().GetValues()
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[1].GetStructValue().GetFields()["portfolio_id"].GetStringValue())
	assert.Equal(t, "quarterly", items[2].GetStructValue().GetFields()["period_type"].GetStringValue())
}

func TestCalculationFlags_BatchRequestEmpty(t *testing.T) {
	_, err := calculationFlags{}.batchRequest(nil)

	assert.EqualError(t, err, "at least one --portfolio is required")
}
