package config

// builtin returns Harold's built-in, Go-literal defaults — the first and
// lowest-priority layer in the configuration chain.
func builtin() Config {
	return Config{
		GRPC: GRPCConfig{
			Host: "127.0.0.1",
			Port: 50060,
		},
		Store: StoreConfig{
			Path: "store",
		},
		TTS: TTSConfig{
			Command: "say",
		},
		Notify: NotifyConfig{
			SkipIfSessionActive: boolPtr(true),
		},
		Log: LogConfig{
			Level: "info",
		},
		Timeouts: TimeoutsConfig{
			SubprocessSeconds: 10,
		},
	}
}

func boolPtr(b bool) *bool { return &b }
