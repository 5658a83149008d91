package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flexidb/internal/config"
)

func TestCurlHostForListenAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		listenAddr string
		want       string
	}{
		{":8080", "localhost:8080"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
		{"0.0.0.0:8080", "localhost:8080"},
		{"[::]:8443", "localhost:8443"},
		{"[::1]:8080", "[::1]:8080"},
		{"  :7070  ", "localhost:7070"},
		{"", "localhost:8080"},
		{"   ", "localhost:8080"},
		{"db-gateway", "db-gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.listenAddr, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, curlHostForListenAddr(tt.listenAddr))
		})
	}
}

func TestScheme(t *testing.T) {
	assert.Equal(t, "http", scheme(&config.Config{}))
	assert.Equal(t, "https", scheme(&config.Config{TLSCertFile: "cert.pem", TLSKeyFile: "key.pem"}))
}
