package config

// APIConfig defines the HTTP listener of the serve command.
type APIConfig struct {
	Address string `json:"address"`
	// Token, when set, is required as "Authorization: Bearer <token>".
	Token string `json:"token"`
}

// SetDefaults applies the default listen address.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
