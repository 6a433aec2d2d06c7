package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name        string
		dateStr     string
		expectedOk  bool
		expectedY   int
		expectedM   time.Month
		expectedD   int
		expectedFmt string
	}{
		{"bank format", "30/12/2015", true, 2015, time.December, 30, DateLayoutBank},
		{"day first wins", "01/02/2020", true, 2020, time.February, 1, DateLayoutBank},
		{"ISO format", "2015-12-30", true, 2015, time.December, 30, DateLayoutISO},
		{"dashed", "30-12-2015", true, 2015, time.December, 30, DateLayoutDashed},
		{"european", "30.12.2015", true, 2015, time.December, 30, DateLayoutEuropean},
		{"padded", "  30/12/2015 ", true, 2015, time.December, 30, DateLayoutBank},
		{"with time", "2015-12-30  10:00:00", true, 2015, time.December, 30, DateLayoutFull},
		{"invalid", "yesterday", false, 0, 0, 0, ""},
		{"impossible day", "31/02/2020", false, 0, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, err := ParseDate(tt.dateStr)
			if !tt.expectedOk {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedY, got.Year())
			assert.Equal(t, tt.expectedM, got.Month())
			assert.Equal(t, tt.expectedD, got.Day())
			assert.Equal(t, tt.expectedFmt, format)
		})
	}
}

