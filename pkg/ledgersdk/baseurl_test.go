package ledgersdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		override string
		origin   string
		siteURL  string
		want     string
	}{
		{
			name:     "explicit override wins",
			override: "https://api.example.com/",
			origin:   "https://app.example.com",
			siteURL:  "https://deploy.example.com",
			want:     "https://api.example.com",
		},
		{
			name:    "origin beats deployment url",
			origin:  "https://app.example.com",
			siteURL: "https://deploy.example.com",
			want:    "https://app.example.com",
		},
		{
			name:    "deployment url when nothing else",
			siteURL: "https://deploy.example.com/",
			want:    "https://deploy.example.com",
		},
		{
			name: "localhost fallback",
			want: "http://localhost:3000",
		},
		{
			name:     "whitespace counts as empty",
			override: "   ",
			want:     "http://localhost:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBaseURL(tt.override, tt.origin, tt.siteURL))
		})
	}
}

func TestConfirmationURL(t *testing.T) {
	assert.Equal(t,
		"https://app.example.com/auth/confirm",
		ConfirmationURL("https://app.example.com/", ""))

	assert.Equal(t,
		"https://app.example.com/auth/confirm?redirect_to=%2Fdashboard",
		ConfirmationURL("https://app.example.com", "/dashboard"))
}
