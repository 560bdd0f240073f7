// Package main is the entry point for MetaGate.
//
//	@title						MetaGate - Custom Object Deployment Service
//	@version					1.0
//	@description				Accepts custom data-object definitions, generates platform metadata descriptors, and deploys them to a target org through the platform CLI.
//
//	@contact.name				MetaGate Support
//	@contact.url				https://github.com/metagate/metagate/issues
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:3000
//	@BasePath					/
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real configuration comes from the config file or
	// METAGATE_* variables.
	_ = godotenv.Load()

	Execute()
}
