// Package errors provides structured, coded errors for the zvue CLI.
//
// Each error has a unique code (e.g., "Z002") that maps to a category, a
// short message, and a longer explanation. Library packages return plain
// wrapped errors; the CLI converts them with FromError and prints them with
// Format, or FormatJSON when --json-errors is set.
//
// # Usage
//
//	err := errors.New("Z002").
//	    WithFile("index.html").
//	    WithSuggestion("Use z-text or z-html")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR Z002: Unknown directive
//	//
//	//   index.html
//	//
//	//   An attribute starting with z- does not name a supported directive.
//	//   Supported directives are z-text and z-html.
//	//
//	//   Hint: Use z-text or z-html
package errors
