package config

import (
	"encoding/json"
	"os"
)

// GenesisConfig describes the marketplace's initial state. It is applied
// exactly once, on first start against an empty database; the market
// parameters it sets are immutable afterwards.
type GenesisConfig struct {
	NetworkID                string            `json:"network_id"`
	Denom                    string            `json:"denom"` // the only accepted payment denomination
	Admin                    string            `json:"admin"` // pubkey hex receiving the platform fee
	PlatformFeePercent       uint64            `json:"platform_fee_percent"`
	InitialPrice             uint64            `json:"initial_price"`
	PriceIncrementMultiplier uint64            `json:"price_increment_multiplier"`
	Alloc                    map[string]uint64 `json:"alloc"` // pubkey hex → initial balance
}

// TLSConfig holds PEM paths for optional mTLS on the RPC listener.
type TLSConfig struct {
	CACert   string `json:"ca_cert"`
	NodeCert string `json:"node_cert"`
	NodeKey  string `json:"node_key"`
}

// Config holds all daemon configuration.
type Config struct {
	NodeID       string        `json:"node_id"`
	DataDir      string        `json:"data_dir"`
	RPCPort      int           `json:"rpc_port"`
	RPCAuthToken string        `json:"rpc_auth_token"` // empty → no auth
	TLS          *TLSConfig    `json:"tls,omitempty"`
	Genesis      GenesisConfig `json:"genesis"`
}

// DefaultConfig returns a single-node development configuration.
func DefaultConfig() *Config {
	return &Config{
		NodeID:  "market0",
		DataDir: "./data",
		RPCPort: 8545,
		Genesis: GenesisConfig{
			NetworkID:                "curvemarket-dev",
			Denom:                    "usei",
			PlatformFeePercent:       5,
			InitialPrice:             100,
			PriceIncrementMultiplier: 1,
			Alloc:                    map[string]uint64{},
		},
	}
}

// Load reads a JSON config file from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path as formatted JSON.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
