package main

import (
	"fmt"
	"os"
	"registration-verifier/internal/config"

	"gopkg.in/yaml.v2"
)

func main() {
	fmt.Println("# registration-verifier configuration")
	fmt.Println("# every key can be overridden with SMOKE_<KEY>, e.g. SMOKE_BASE_URL or SMOKE_BROWSER_HEADLESS")
	if err := yaml.NewEncoder(os.Stdout).Encode(config.DefaultConfig()); err != nil {
		panic(err)
	}
}
