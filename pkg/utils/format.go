// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatCurrency formats a USD amount with thousands separators.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var sb strings.Builder
	rem := n % 3
	if rem > 0 {
		sb.WriteString(s[:rem])
	}
	for i := rem; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats profit or loss with an explicit sign.
func FormatPnL(pnl float64) string {
	formatted := FormatCurrency(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatPrice formats a quote price to the given number of decimals.
func FormatPrice(price float64, decimals int) string {
	if decimals < 0 {
		decimals = 5
	}
	return fmt.Sprintf("%.*f", decimals, price)
}

// FormatVolume formats a lot size, trimming trailing zeros past two decimals.
func FormatVolume(lots float64) string {
	return fmt.Sprintf("%.2f", lots)
}
