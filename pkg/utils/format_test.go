package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$4.00", FormatCurrency(4))
	assert.Equal(t, "$1,000.00", FormatCurrency(1000))
	assert.Equal(t, "$10,242.50", FormatCurrency(10242.5))
	assert.Equal(t, "$1,234,567.89", FormatCurrency(1234567.89))
	assert.Equal(t, "-$250.00", FormatCurrency(-250))
	assert.Equal(t, "$999.99", FormatCurrency(999.99))
}

func TestFormatPnL(t *testing.T) {
	assert.Equal(t, "+$250.00", FormatPnL(250))
	assert.Equal(t, "-$250.00", FormatPnL(-250))
	assert.Equal(t, "$0.00", FormatPnL(0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+1.50%", FormatPercent(1.5))
	assert.Equal(t, "-0.25%", FormatPercent(-0.25))
	assert.Equal(t, "0.00%", FormatPercent(0))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1.08500", FormatPrice(1.085, 5))
	assert.Equal(t, "191.50", FormatPrice(191.5, 2))
	assert.Equal(t, "1.08500", FormatPrice(1.085, -1))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "1.00", FormatVolume(1))
	assert.Equal(t, "0.50", FormatVolume(0.5))
}

// Property: currency formatting groups thousands correctly and survives a
// round trip back to the numeric value.
func TestPropertyCurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	grouped := regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)

	properties.Property("grouping and round trip", prop.ForAll(
		func(amount float64) bool {
			if math.Abs(amount) > 1e12 {
				return true
			}

			formatted := FormatCurrency(amount)

			numPart := strings.TrimPrefix(formatted, "-")
			numPart = strings.TrimPrefix(numPart, "$")
			intPart := strings.Split(numPart, ".")[0]
			if !grouped.MatchString(intPart) {
				t.Logf("bad grouping for %f: %s", amount, formatted)
				return false
			}

			parsed, err := strconv.ParseFloat(strings.ReplaceAll(numPart, ",", ""), 64)
			if err != nil {
				return false
			}
			if strings.HasPrefix(formatted, "-") {
				parsed = -parsed
			}
			return math.Abs(parsed-amount) <= 0.005+math.Abs(amount)*1e-9
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}
