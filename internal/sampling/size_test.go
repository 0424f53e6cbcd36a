package sampling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidateSizeBoundaries(t *testing.T) {
	cases := []struct {
		in   SampleSize
		want SizeErrorKind
	}{
		{"100%", ""},
		{"0%", ""},
		{"", ""},
		{"   ", ""},
		{"50", ""},
		{"0", ""},
		{"101%", PercentRange},
		{"-1%", PercentRange},
		{"abc%", PercentRange},
		{"51", ExceedsAvailable},
		{"5.5", NotWhole},
		{"-3", NotNumber},
		{"ten", NotNumber},
	}
	for _, c := range cases {
		err := ValidateSize(c.in, 50)
		if c.want == "" {
			assert.Nil(t, err, "ValidateSize(%q)", c.in)
			continue
		}
		require.NotNil(t, err, "ValidateSize(%q)", c.in)
		assert.Equal(t, c.want, err.Kind, "ValidateSize(%q)", c.in)
	}

	err := ValidateSize("51", 50)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "50")
	assert.Equal(t, "must be a whole number", ValidateSize("5.5", 50).Error())
}

func TestResolveSize(t *testing.T) {
	assert.Equal(t, 50, ResolveSize("100%", 50))
	assert.Equal(t, 3, ResolveSize("50%", 5), "half rounds up")
	assert.Equal(t, 2, ResolveSize("2", 5))
	assert.Equal(t, 5, ResolveSize("9", 5), "clamped to available")
	assert.Equal(t, 0, ResolveSize("", 5))
	assert.Equal(t, 0, ResolveSize("junk", 5))
	assert.Equal(t, 0, ResolveSize("-4", 5))
}

func TestSampleSizeDecoding(t *testing.T) {
	var sizes []SampleSize
	require.NoError(t, json.Unmarshal([]byte(`["10%", 3, ""]`), &sizes))
	assert.Equal(t, []SampleSize{"10%", "3", ""}, sizes)

	var y struct {
		A SampleSize `yaml:"a"`
		B SampleSize `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 4\nb: 25%\n"), &y))
	assert.Equal(t, SampleSize("4"), y.A)
	assert.Equal(t, SampleSize("25%"), y.B)
}
