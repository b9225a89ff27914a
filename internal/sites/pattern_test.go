package sites

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern string
		url     string
		want    bool
	}{
		{"*://*.proquest.com/*", "https://www.proquest.com/docview/1/bookReader", true},
		{"*://*.proquest.com/*", "https://proquest.com/docImage.action?encrypted=x", true},
		{"*://*.proquest.com/*", "https://ebookcentral.proquest.com/lib/x", true},
		{"*://*.proquest.com/*", "https://proquest.com.evil.net/", false},
		{"*://*.proquest.com/*", "https://www.jstor.org/stable/1", false},
		{"*://www.jstor.org/", "https://www.jstor.org", true},
		{"*://www.jstor.org/", "https://www.jstor.org/stable/1", false},
		{"https://*.jstor.org/*", "http://www.jstor.org/stable/1", false},
		{"*://*.jstor.org/*", "https://www.jstor.org/stable/get_image/1?path=abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.url, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)
			require.NoError(t, err)

			u, err := url.Parse(tt.url)
			require.NoError(t, err)

			assert.Equal(t, tt.want, p.Match(u))
		})
	}
}

func TestCompilePattern_MissingScheme(t *testing.T) {
	_, err := CompilePattern("www.jstor.org/*")
	assert.Error(t, err)
}

func TestPattern_MatchNil(t *testing.T) {
	p := MustCompilePattern("*://*/*")
	assert.False(t, p.Match(nil))
	assert.Equal(t, "*://*/*", p.String())
}
