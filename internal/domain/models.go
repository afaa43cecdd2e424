package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FormPayload is the flat field-name to text-value mapping built from one
// submitted form. Keys are whatever the form defines.
type FormPayload map[string]string

// PayloadFromForm flattens posted form values. A repeated field keeps its
// last value, the same as iterating FormData into a plain object.
func PayloadFromForm(values url.Values) FormPayload {
	p := make(FormPayload, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		p[k] = vs[len(vs)-1]
	}
	return p
}

// PredictionKind records the JSON type the backend used for "prediction".
type PredictionKind int

const (
	KindNumber PredictionKind = iota
	KindBoolean
)

// Prediction is the validated Prediction Response returned by the backend.
type Prediction struct {
	Prediction        float64
	Kind              PredictionKind
	Probability       float64 // percent, 0-100
	SuggestedDiscount float64 // percent
}

// IsChurn reports whether the backend predicted churn. Only the number 1
// counts; a boolean true does not.
func (p Prediction) IsChurn() bool {
	return p.Kind == KindNumber && p.Prediction == 1
}

// Label is the human readable prediction.
func (p Prediction) Label() string {
	if p.IsChurn() {
		return "Churn"
	}
	return "No Churn"
}

// SuggestedDiscount maps a churn probability (percent) to the discount tier
// the prediction backend is expected to suggest.
func SuggestedDiscount(probability float64) float64 {
	switch {
	case probability >= 80:
		return 25
	case probability >= 60:
		return 20
	case probability >= 40:
		return 15
	case probability >= 20:
		return 10
	default:
		return 0
	}
}

// JournalEntry is one completed submission as recorded by the journal.
// Form field values are never part of an entry.
type JournalEntry struct {
	ID                int64
	Container         string
	Seq               uint64
	Outcome           Outcome
	Label             string
	Probability       float64
	SuggestedDiscount float64
	Latency           time.Duration
	Error             string
	CreatedAt         time.Time
}

// FormatPercent renders v the way a browser prints a number, followed by "%":
// 87.5 -> "87.5%", 10 -> "10%", -0 -> "0%", 1e21 -> "1e+21%".
func FormatPercent(v float64) string {
	return formatNumber(v) + "%"
}

// formatNumber is the shortest round-trip form of v. Magnitudes from 1e21 up
// and below 1e-6 use an exponent without leading zeros.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	if a := math.Abs(v); a < 1e21 && a >= 1e-6 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
