package config

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes reported by LoadError.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeNotFound = "E005" // File not found
	ErrCodeParse    = "E004" // CUE syntax error
	ErrCodeSchema   = "E006" // Value violates #Config
	ErrCodeInvalid  = "E007" // Semantic check failed
)

// LoadError is a configuration problem, with a CUE position when known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a CUE configuration file. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return LoadBytes(path, data)
}

// LoadBytes unifies data with the schema and decodes the result.
// The first problem found is returned.
func LoadBytes(name string, data []byte) (Config, error) {
	cfg, errs := load(name, data)
	if len(errs) > 0 {
		return Config{}, errs[0]
	}
	return cfg, nil
}

// Validate reports every problem in the configuration file at path.
// A nil result means the file is valid.
func Validate(path string) []error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}}
		}
		return []error{fmt.Errorf("read config %s: %w", path, err)}
	}
	_, errs := load(path, data)
	return errs
}

func load(name string, data []byte) (Config, []error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, []error{fmt.Errorf("compile schema: %w", err)}
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	user := ctx.CompileBytes(data, cue.Filename(name))
	if err := user.Err(); err != nil {
		return Config{}, convertCUEError(ErrCodeParse, err)
	}

	v := def.Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, convertCUEError(ErrCodeSchema, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("decode config: %v", err)}}
	}
	if errs := cfg.Check(); len(errs) > 0 {
		return Config{}, errs
	}
	return cfg, nil
}

// convertCUEError splits a CUE error list into LoadErrors with positions.
func convertCUEError(code string, err error) []error {
	var out []error
	for _, e := range cueerrors.Errors(err) {
		out = append(out, &LoadError{
			Code:    code,
			Message: e.Error(),
			Pos:     e.Position(),
		})
	}
	if len(out) == 0 {
		out = append(out, &LoadError{Code: code, Message: err.Error()})
	}
	return out
}
