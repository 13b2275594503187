package reqcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "VR-2026-000001", Format(2026, 1))
	assert.Equal(t, "VR-2026-000123", Format(2026, 123))
	assert.Equal(t, "VR-2027-1234567", Format(2027, 1234567))
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  Code
		expectErr bool
	}{
		{
			name:     "Standard Case",
			raw:      "VR-2026-000123",
			expected: Code{Year: 2026, Seq: 123},
		},
		{
			name:     "Lowercase input",
			raw:      "vr-2026-000001",
			expected: Code{Year: 2026, Seq: 1},
		},
		{
			name:     "Surrounding whitespace",
			raw:      "  VR-2026-000042  ",
			expected: Code{Year: 2026, Seq: 42},
		},
		{
			name:     "Sequence longer than six digits",
			raw:      "VR-2027-1234567",
			expected: Code{Year: 2027, Seq: 1234567},
		},
		{
			name:      "Wrong prefix",
			raw:       "XX-2026-000123",
			expectErr: true,
		},
		{
			name:      "Missing sequence",
			raw:       "VR-2026",
			expectErr: true,
		},
		{
			name:      "Short year",
			raw:       "VR-26-000123",
			expectErr: true,
		},
		{
			name:      "Zero sequence",
			raw:       "VR-2026-000000",
			expectErr: true,
		},
		{
			name:      "Empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "Garbage",
			raw:       "not a code",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := Parse(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, code)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	code, err := Parse(Format(2026, 7))
	assert.NoError(t, err)
	assert.Equal(t, Code{Year: 2026, Seq: 7}, code)
}
