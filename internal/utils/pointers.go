package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

func IntPtr(i int) *int {
	return &i
}

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}

	return *t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NonBlankPtr returns nil for blank strings and a pointer to the trimmed
// value otherwise.
func NonBlankPtr(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CollapseSpaces trims s and folds inner whitespace runs into single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func RoundFloat64(f float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(f*factor) / factor
}

func MustMarshalJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("failed to marshal to JSON: %w", err))
	}
	return data
}
