package qwen

import (
	"github.com/braid-labs/braid/core"
	"github.com/braid-labs/braid/providers"
)

func init() {
	providers.Register("qwen", func(apiKey string) (core.Provider, error) {
		return New(apiKey)
	})
}
