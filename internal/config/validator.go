package config

import (
	"fmt"
	"net"

	"github.com/go-playground/validator/v10"

	"github.com/kahgeh/harold/internal/harolderr"
)

// Validate runs struct-tag validation over cfg, then the one rule
// go-playground/validator has no built-in tag for: the gRPC host must
// actually be a loopback address, since binding it anywhere else is a
// configuration error, not a deployment choice.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return harolderr.NewConfigError("validate", err)
	}

	if !isLoopbackHost(cfg.GRPC.Host) {
		return harolderr.NewConfigError("grpc.host",
			fmt.Errorf("%q is not a loopback address", cfg.GRPC.Host))
	}

	return nil
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
