package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Model.ID == "" {
		cfg.Model.ID = "Alibaba-NLP/gte-multilingual-base"
	}
	if cfg.Model.CacheDir == "" {
		cfg.Model.CacheDir = "/usr/local/var/vektor/models"
	}
	if cfg.Model.Dimensions == 0 {
		cfg.Model.Dimensions = 768
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 512
	}
	if cfg.Model.AuthTokenEnv == "" {
		cfg.Model.AuthTokenEnv = "HUGGINGFACE_HUB_TOKEN"
	}
	if cfg.Runtime.CacheSize == 0 {
		cfg.Runtime.CacheSize = 10000
	}
	if cfg.Runtime.MaxBatchSize == 0 {
		cfg.Runtime.MaxBatchSize = 256
	}
}
