package domain

// Validator is one domain validator. Validate must be a pure function of
// req: no I/O, no clocks, no randomness.
type Validator interface {
	Name() string
	Description() string
	Validate(req Request) *Result
}

// ConfigLoader reads settings from a config file. An empty path yields
// DefaultConfig.
type ConfigLoader interface {
	Load(path string) (Config, error)
}

// RequestDecoder parses raw input. Input that is not a single JSON object
// yields an EMPTY_INPUT or INVALID_JSON entry instead of a Request.
type RequestDecoder interface {
	Decode(source string, data []byte) (Request, *Entry)
}
