package linkmeta

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when a link resolves to an address on the
// host itself or on a private network.
var ErrBlockedAddress = errors.New("linkmeta: blocked address")

const maxRedirects = 5

// carrier-grade NAT space is not covered by netip's IsPrivate
var sharedSpace = netip.MustParsePrefix("100.64.0.0/10")

// blockedAddr reports whether ip must not be dialled on behalf of a user.
func blockedAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return !ip.IsValid() ||
		ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		sharedSpace.Contains(ip)
}

// dialControl runs after DNS resolution, so address is always a literal IP.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || blockedAddr(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

// checkRedirect keeps redirects on http(s) and bounds the chain. Targets are
// dialled through the same guarded dialer.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if _, err := Normalize(req.URL.String()); err != nil {
		return err
	}
	return nil
}

// guardedClient only dials public addresses. Proxies are disabled because
// the dialer would otherwise check the proxy instead of the target.
func guardedClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{
		Timeout:       fetchTimeout,
		Transport:     transport,
		CheckRedirect: checkRedirect,
	}
}
