package config_test

import (
	"fmt"

	"github.com/dglo/payload-sub005/pkg/config"
	"github.com/dglo/payload-sub005/pkg/payload"
)

// ExampleDefault demonstrates the default configuration.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Producers: %d\n", cfg.Pipeline.Producers)
	fmt.Printf("Hits per trigger: %d\n", cfg.Pipeline.HitsPerTrigger)
	fmt.Printf("Hit prealloc: %d\n", cfg.Pools[payload.KindSimpleHit.String()].Prealloc)

	// Output:
	// Producers: 4
	// Hits per trigger: 8
	// Hit prealloc: 256
}

// ExampleConfig_Validate shows how a bad pool limit is reported.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Pools["simpleHit"] = config.PoolConfig{MaxLive: 10, Prealloc: 20}

	fmt.Println(cfg.Validate())

	// Output:
	// config: prealloc exceeds max_live
}
