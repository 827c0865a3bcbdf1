package extraction

import (
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrPrivateHost is returned when a remote host resolves to a loopback, private or link-local address.
var ErrPrivateHost = errors.New("host resolves to a private address")

// IsPrivateIP reports whether ip must not be reached on behalf of a user.
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// DenyPrivateAddress is a net.Dialer Control hook. It runs after DNS
// resolution, so redirects and rebinding are covered too.
func DenyPrivateAddress(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return ErrPrivateHost
	}
	return nil
}

// newPublicClient returns a client that refuses to connect to private addresses.
func newPublicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: DenyPrivateAddress,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			Proxy:               http.ProxyFromEnvironment,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
