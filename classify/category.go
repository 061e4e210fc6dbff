package classify

// Category is the closed set of failure classes an error can be mapped to.
type Category string

const (
	CategoryAuth          Category = "auth"
	CategoryNetwork       Category = "network"
	CategoryTimeout       Category = "timeout"
	CategoryValidation    Category = "validation"
	CategorySubprocess    Category = "subprocess"
	CategoryParsing       Category = "parsing"
	CategoryPermission    Category = "permission"
	CategoryConfiguration Category = "configuration"
	CategoryUnknown       Category = "unknown"
)

// Categories lists every valid category, in a stable order.
func Categories() []Category {
	return []Category{
		CategoryAuth,
		CategoryNetwork,
		CategoryTimeout,
		CategoryValidation,
		CategorySubprocess,
		CategoryParsing,
		CategoryPermission,
		CategoryConfiguration,
		CategoryUnknown,
	}
}

func (c Category) String() string { return string(c) }

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	_, ok := resolutions[c]
	return ok
}

var resolutions = map[Category]string{
	CategoryAuth:          "Check that your API key is set and has not expired; re-authenticate if needed.",
	CategoryNetwork:       "Check your network connection and proxy settings, then try again.",
	CategoryTimeout:       "The operation took too long; retry, or raise the configured timeout.",
	CategoryValidation:    "The request was rejected as invalid; fix the input before retrying.",
	CategorySubprocess:    "The underlying process failed; inspect its exit code and stderr output.",
	CategoryParsing:       "The response could not be parsed; it may be truncated or malformed.",
	CategoryPermission:    "Permission was denied; check file modes and account entitlements.",
	CategoryConfiguration: "Configuration is invalid or missing; review the settings in use.",
	CategoryUnknown:       "An unexpected error occurred; inspect the underlying cause for details.",
}

// DefaultResolution returns the fixed resolution text for c. It is total over
// the enumerated categories; anything else maps to the unknown resolution.
func DefaultResolution(c Category) string {
	if r, ok := resolutions[c]; ok {
		return r
	}
	return resolutions[CategoryUnknown]
}
