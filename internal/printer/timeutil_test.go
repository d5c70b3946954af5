package printer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mgit-dev/mgit/internal/printer"
)

func TestTimeAgo(t *testing.T) {
	now := time.Now().UTC()

	tests := map[string]struct {
		t   time.Time
		exp string
	}{
		"A few seconds ago should be just now":      {t: now.Add(-5 * time.Second), exp: "just now"},
		"A single minute should not be pluralized":  {t: now.Add(-90 * time.Second), exp: "1 minute ago"},
		"Minutes should be reported":                {t: now.Add(-10 * time.Minute), exp: "10 minutes ago"},
		"Hours should be reported":                  {t: now.Add(-3 * time.Hour), exp: "3 hours ago"},
		"Days should be reported":                   {t: now.Add(-49 * time.Hour), exp: "2 days ago"},
		"Old timestamps should be reported in weeks": {t: now.Add(-15 * 24 * time.Hour), exp: "2 weeks ago"},
		"Future timestamps should not panic":        {t: now.Add(time.Hour), exp: "in the future"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, printer.TimeAgo(test.t))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "2026-03-14 09:26:53 UTC", printer.FormatTimestamp(ts))
}
