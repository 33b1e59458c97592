package config

type ServerConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	GRPC GRPCConfig `yaml:"grpc"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST"`
	Port int    `yaml:"port" env:"HTTP_PORT"`
}

// GRPCConfig configures the health server. A zero port disables it.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST"`
	Port int    `yaml:"port" env:"GRPC_PORT"`
}
