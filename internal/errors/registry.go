package errors

import (
	stderrors "errors"
	"sort"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Binding errors (Z001-Z009)
	"Z001": {
		Category: CategoryRuntime,
		Message:  "Unknown property",
		Detail:   "A binding or write named a key that the data object does not have. Strict mode rejects these instead of resolving them to an empty value.",
	},
	"Z002": {
		Category: CategoryTemplate,
		Message:  "Unknown directive",
		Detail:   "An attribute starting with z- does not name a supported directive. Supported directives are z-text and z-html.",
	},
	"Z003": {
		Category: CategoryTemplate,
		Message:  "Template parse failed",
		Detail:   "The template could not be parsed as an HTML fragment.",
	},
	"Z004": {
		Category: CategoryData,
		Message:  "Invalid data document",
		Detail:   "The data document must be a JSON or YAML object at the top level.",
	},

	// Config errors (Z010-Z019)
	"Z010": {
		Category: CategoryConfig,
		Message:  "Config not found",
		Detail:   "No zvue.json was found.",
	},
	"Z011": {
		Category: CategoryConfig,
		Message:  "Invalid config",
		Detail:   "zvue.json could not be parsed or failed validation.",
	},

	// Source errors (Z020-Z029)
	"Z020": {
		Category: CategorySource,
		Message:  "Source fetch failed",
		Detail:   "A template or data document could not be read from disk or S3.",
	},

	// Server errors (Z030-Z039)
	"Z030": {
		Category: CategoryServer,
		Message:  "Server failure",
		Detail:   "The live server stopped with an error.",
	},

	// CLI errors (Z040-Z049)
	"Z040": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command line could not be parsed or the command stopped with an uncoded error.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// As finds the first ZvueError in err's chain.
func As(err error) (*ZvueError, bool) {
	var ze *ZvueError
	if stderrors.As(err, &ze) {
		return ze, true
	}
	return nil, false
}
