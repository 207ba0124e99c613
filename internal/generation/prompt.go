package generation

import "strings"

// DefaultPrompt is sent when the user gives no description.
const DefaultPrompt = "Interpret this image as you will, but make it beautiful while trying to adhere to the reference image and object placements."

const promptSuffix = ". make it beautiful while adhering to the reference image and object placements."

// EnhancePrompt turns the user's description into the prompt sent to the model.
func EnhancePrompt(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return DefaultPrompt
	}
	return trimmed + promptSuffix
}
