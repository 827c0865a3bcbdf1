package extraction

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"192.168.0.10", true},
		{"172.16.5.4", true},
		{"169.254.169.254", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fd00::1", true},
		{"93.184.216.34", false},
		{"2606:4700::1111", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.private, IsPrivateIP(net.ParseIP(tt.ip)))
		})
	}
}

func TestDenyPrivateAddress(t *testing.T) {
	assert.ErrorIs(t, DenyPrivateAddress("tcp", "127.0.0.1:8080", nil), ErrPrivateHost)
	assert.ErrorIs(t, DenyPrivateAddress("tcp", "[::1]:443", nil), ErrPrivateHost)
	assert.NoError(t, DenyPrivateAddress("tcp", "93.184.216.34:443", nil))
	assert.Error(t, DenyPrivateAddress("tcp", "no-port", nil))
}
