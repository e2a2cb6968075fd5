package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input string
		want  ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"512b", 512},
		{"50Mi", 50 * MiB},
		{"50MiB", 50 * MiB},
		{"1gi", GiB},
		{"  2 Ki ", 2 * KiB},
		{"200MB", 200 * MB},
		{"1k", KB},
		{"1.5Mi", ByteSize(1.5 * float64(MiB))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseByteSizeErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "Mi", "-1Mi", "10Xi", "1Ti", "ten"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseByteSize(input)
			assert.Error(t, err)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "50Mi", (50 * MiB).String())
	assert.Equal(t, "2Gi", (2 * GiB).String())
	assert.Equal(t, "1536Ki", ByteSize(1.5*float64(MiB)).String())
	assert.Equal(t, "1000", KB.String())
	assert.Equal(t, "0", ByteSize(0).String())
}

func TestYAMLRoundTrip(t *testing.T) {
	type limits struct {
		MaxUploadSize ByteSize `yaml:"max_upload_size"`
	}

	out, err := yaml.Marshal(limits{MaxUploadSize: 10 * MiB})
	require.NoError(t, err)
	assert.Equal(t, "max_upload_size: 10Mi\n", string(out))

	var back limits
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, 10*MiB, back.MaxUploadSize)
}
