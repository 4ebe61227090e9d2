// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures into user-facing explanations.
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Class is a coarse category of network failure.
type Class int

const (
	// None means the error is not a recognizable network failure.
	None Class = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
)

func (c Class) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case ConnectionRefused:
		return "connection_refused"
	case TLS:
		return "tls"
	default:
		return "none"
	}
}

// Classify inspects err and its chain.
func Classify(err error) Class {
	switch {
	case err == nil:
		return None
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isTLSError(err):
		return TLS
	default:
		return None
	}
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "x509") ||
		strings.Contains(s, "certificate")
}

// Explain renders a title and troubleshooting bullets for a network failure
// that happened while doing action against host. It returns "" when err is
// not a recognizable network failure.
func Explain(err error, action, host string) string {
	var title string
	var bullets []string
	switch Classify(err) {
	case Timeout:
		title = "Connection timeout while " + action
		bullets = []string{
			host + " took too long to respond",
			"Raise http_timeout in the config (or MODELPARK_HTTP_TIMEOUT) for slow apps",
			"Check that no firewall or proxy is holding the connection",
		}
	case DNS:
		title = "Cannot resolve " + host + " while " + action
		bullets = []string{
			"Check your internet connection and DNS settings",
			"Check the app name: deployed apps are served from {app}." + domainOf(host),
		}
	case ConnectionRefused:
		title = "Connection refused while " + action
		bullets = []string{
			host + " is not accepting connections",
			"The app may be stopped: check 'modelpark-go status'",
		}
	case TLS:
		title = "Secure connection failed while " + action
		bullets = []string{
			"Check your system date and time",
			"Check proxy settings that intercept HTTPS",
		}
	default:
		return ""
	}

	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n\n")
	for _, line := range bullets {
		b.WriteString("  • ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// HostOf extracts the host from rawURL for messages, or "server".
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

func domainOf(host string) string {
	if i := strings.IndexByte(host, '.'); i >= 0 && strings.Count(host, ".") > 1 {
		return host[i+1:]
	}
	return host
}
