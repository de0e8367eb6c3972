package deepseek

import (
	"github.com/braid-labs/braid/core"
	"github.com/braid-labs/braid/providers"
)

func init() {
	providers.Register("deepseek", func(apiKey string) (core.Provider, error) {
		return New(apiKey)
	})
}
