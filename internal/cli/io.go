package cli

import (
	"fmt"
	"io"
	"net"
	"os"

	"proxysmith/internal/proxy"
)

// readInput reads a file, or stdin when path is "-" or empty.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// writeOutput writes data to a file, or stdout when path is "-" or empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), path)
	return nil
}

// parseEndpoint turns an ip:port argument into an endpoint.
func parseEndpoint(s, country, provider string) (proxy.Endpoint, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return proxy.Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", s, err)
	}
	if country == "" {
		country = proxy.Unknown
	}
	if provider == "" {
		provider = proxy.Unknown
	}
	return proxy.Endpoint{IP: host, Port: port, Country: country, Provider: provider}, nil
}

func truncateName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	return name[:maxLen-3] + "..."
}
