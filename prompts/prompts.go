package prompts

import _ "embed"

// Embedded prompt files

//go:embed fact_analysis.txt
var factAnalysis string

//go:embed chat_system.txt
var chatSystem string

func FactAnalysis() string { return factAnalysis }
func ChatSystem() string   { return chatSystem }
