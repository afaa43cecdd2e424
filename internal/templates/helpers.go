package templates

import (
	"strconv"
	"time"

	"github.com/csg33k/churn-advisor/internal/domain"
)

// valueOf returns the previously submitted value of a field, or "".
func valueOf(values domain.FormPayload, name string) string {
	if values == nil {
		return ""
	}
	return values[name]
}

// selectedOr reports whether opt should be the selected option of a select:
// either it was submitted, or nothing was and it is the field's first option.
func selectedOr(values domain.FormPayload, f Field, opt string) bool {
	if v, ok := values[f.Name]; ok {
		return v == opt
	}
	return len(f.Options) > 0 && f.Options[0] == opt
}

func stamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + " ms"
}
