package es

import (
	"github.com/elastic/go-elasticsearch/v9"

	"github.com/ivgrimm/shop_backend/internal/config"
)

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	}

	return elasticsearch.NewClient(esCfg)
}
