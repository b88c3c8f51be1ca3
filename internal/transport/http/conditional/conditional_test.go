package conditional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestETag(t *testing.T) {
	assert.Equal(t, `"0"`, ETag(0))
	assert.Equal(t, `"42"`, ETag(42))
}

func TestNotModified(t *testing.T) {
	tests := []struct {
		name    string
		version int64
		header  string
		want    bool
	}{
		{name: "no header returns full response", version: 3, header: "", want: false},
		{name: "matching quoted version", version: 3, header: `"3"`, want: true},
		{name: "matching bare version", version: 3, header: "3", want: true},
		{name: "matching weak validator", version: 3, header: `W/"3"`, want: true},
		{name: "other version", version: 3, header: `"4"`, want: false},
		{name: "malformed token treated as non-matching", version: 3, header: `"abc"`, want: false},
		{name: "initial version zero", version: 0, header: `"0"`, want: true},
		{name: "surrounding whitespace", version: 7, header: ` "7" `, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NotModified(tt.version, tt.header))
		})
	}
}
