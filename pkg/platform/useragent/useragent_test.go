package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariIOS = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	firefox   = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	googlebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		contains  []string
	}{
		{name: "chrome on desktop", userAgent: chromeMac, contains: []string{"Chrome", " on "}},
		{name: "safari on iphone", userAgent: safariIOS, contains: []string{" on ", "iPhone"}},
		{name: "firefox on linux", userAgent: firefox, contains: []string{"Firefox", " on "}},
		{name: "unrecognised agent is still formatted", userAgent: "Unknown/1.0", contains: []string{" on "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Describe(tt.userAgent)
			for _, want := range tt.contains {
				assert.Contains(t, result, want)
			}
			assert.NotContains(t, result, "  ")
		})
	}
}

func TestDescribeEmpty(t *testing.T) {
	assert.Equal(t, "Unknown Client", Describe(""))
	assert.Equal(t, "Unknown Client", Describe("   "))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "unknown", Kind(""))
	assert.Equal(t, "desktop", Kind(chromeMac))
	assert.Equal(t, "mobile", Kind(safariIOS))
	assert.Equal(t, "bot", Kind(googlebot))
}
