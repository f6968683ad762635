package vision

import (
	"embed"
	"fmt"
	"strings"
)

// DefaultPromptVersion is used when a request names no prompt.
const DefaultPromptVersion = "v1"

// UserInstruction accompanies the image in the user turn.
const UserInstruction = "Analyze this tire sidewall photo and return the JSON object."

//go:embed prompts/*.txt
var promptFS embed.FS

// SystemPrompt returns the instruction text for version.
func SystemPrompt(version string) (string, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		version = DefaultPromptVersion
	}
	data, err := promptFS.ReadFile("prompts/tire_" + version + ".txt")
	if err != nil {
		return "", fmt.Errorf("unknown prompt version %q", version)
	}
	return string(data), nil
}
