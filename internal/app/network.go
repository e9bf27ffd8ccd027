package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Dialer opens network connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NetworkError reports that none of the probe hosts could be reached.
type NetworkError struct {
	Probes []string
	Cause  error
}

// Error returns the formatted error message.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("no network connectivity: could not reach %s: %v", strings.Join(e.Probes, ", "), e.Cause)
}

// Unwrap returns the underlying dial errors.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Suggestion returns a hint for the user.
func (e *NetworkError) Suggestion() string {
	return "Check the WSL network (try `ping github.com`), proxy settings and /etc/resolv.conf, or set network.skip in the configuration"
}

// CheckNetwork dials each probe address in turn and succeeds as soon as one
// answers. Each dial is bounded by timeout.
func CheckNetwork(ctx context.Context, dialer Dialer, probes []string, timeout time.Duration) error {
	if len(probes) == 0 {
		return nil
	}

	var errs []error
	for _, probe := range probes {
		err := dialOnce(ctx, dialer, probe, timeout)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", probe, err))
		if ctx.Err() != nil {
			break
		}
	}
	return &NetworkError{Probes: probes, Cause: errors.Join(errs...)}
}

func dialOnce(ctx context.Context, dialer Dialer, address string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}
