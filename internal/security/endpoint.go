package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateAPIBaseURL checks that a configured engine base URL is safe to
// issue server-side requests against. The engine is normally reached over
// loopback or a private network, so those ranges are allowed; link-local
// addresses (where cloud instance metadata services live) and known
// metadata hostnames are rejected. Both the literal host and DNS-resolved
// addresses are checked.
func ValidateAPIBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format")
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https")
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	host := u.Hostname()

	blocked := []string{"metadata.google.internal", "metadata.google"}
	for _, b := range blocked {
		if strings.EqualFold(host, b) {
			return fmt.Errorf("URL host %q is not allowed", host)
		}
	}

	ip := net.ParseIP(host)
	if ip != nil {
		if err := checkAPIHostIP(ip); err != nil {
			return err
		}
		return nil // IP literal checked, no DNS resolution needed
	}

	// Resolve hostname and check all resolved IPs
	ips, err := net.LookupHost(host)
	if err != nil {
		return fmt.Errorf("cannot resolve URL host: %s", host)
	}
	for _, ipStr := range ips {
		resolved := net.ParseIP(ipStr)
		if resolved != nil {
			if err := checkAPIHostIP(resolved); err != nil {
				return fmt.Errorf("URL host %q resolves to blocked address: %v", host, err)
			}
		}
	}

	return nil
}

func checkAPIHostIP(ip net.IP) error {
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local addresses are not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified addresses are not allowed")
	}
	return nil
}
