// Package config provides configuration management for checkers games.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// A configuration names a starting position and presentation settings:
//
//	name: endgame
//	description: two white men against one black
//	first_turn: white
//	locale: ru
//	layout:
//	  - "........"
//	  - ...
//
// An omitted layout means the standard starting position. Configurations
// are addressed by file name without extension ("classic" for
// classic.json).
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("chain_drill")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
