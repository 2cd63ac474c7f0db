package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/physprop/internal/compiler"
	"github.com/roach88/physprop/internal/ir"
)

// Loader codes. Problems inside a schema use the compiler's E1xx codes.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002"
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004"
	ErrCodeNotFound    = "E005"
	ErrCodeBuildFailed = "E006"
	ErrCodeBadFlag     = "E008"
)

// LoadResult is a compiled schema together with the CUE value it came from.
// Spec is nil when compilation failed.
type LoadResult struct {
	Spec      *ir.SchemaSpec
	CUEValue  cue.Value
	FileCount int
}

// LoadError is a coded failure to turn a specs directory into a schema.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	msg := e.Code + ": " + e.Message
	if !e.Pos.IsValid() {
		return msg
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
}

func loadErrorf(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// LoadSchema builds the CUE package in dir and compiles it. Validation is
// left to the caller. On a compile error the returned result still carries
// the CUE value.
func LoadSchema(dir string) (*LoadResult, error) {
	if err := checkSpecsDir(dir); err != nil {
		return nil, err
	}

	files, err := FindCUEFiles(dir)
	switch {
	case err != nil:
		return nil, loadErrorf(ErrCodeScanError, "error scanning directory: %v", err)
	case len(files) == 0:
		return nil, loadErrorf(ErrCodeNoFiles, "no CUE files found in %s", dir)
	}

	value, err := buildPackage(dir)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{CUEValue: value, FileCount: len(files)}
	result.Spec, err = compiler.CompileSchema(value)
	if err != nil {
		return result, fromCompileError(err)
	}
	return result, nil
}

func checkSpecsDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return loadErrorf(ErrCodeNotFound, "specs directory not found: %s", dir)
	case err != nil:
		return loadErrorf(ErrCodeNotFound, "error accessing specs directory: %v", err)
	case !info.IsDir():
		return loadErrorf(ErrCodeNotFound, "not a directory: %s", dir)
	}
	return nil
}

func buildPackage(dir string) (cue.Value, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, loadErrorf(ErrCodeLoadFailed, "no CUE instances loaded")
	}
	if err := instances[0].Err; err != nil {
		return cue.Value{}, loadErrorf(ErrCodeLoadFailed, "loading CUE files: %v", err)
	}

	value := cuecontext.New().BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return cue.Value{}, loadErrorf(ErrCodeBuildFailed, "building CUE value: %v", err)
	}
	return value, nil
}

// FindCUEFiles returns every .cue file under dir.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".cue") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func fromCompileError(err error) *LoadError {
	var ce *compiler.CompileError
	if !errors.As(err, &ce) {
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return &LoadError{Code: MapFieldToErrorCode(ce.Field), Message: ce.Message, Pos: ce.Pos}
}

// MapFieldToErrorCode returns the validation code for a compiler error on
// field, or E001 for fields without a dedicated code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "schema":
		return compiler.ErrSchemaNameEmpty
	case field == "quantity":
		return compiler.ErrNoQuantities
	case strings.HasPrefix(field, "quantity.") && strings.HasSuffix(field, ".description"):
		return compiler.ErrDescriptionEmpty
	}
	return ErrCodeGeneric
}

// loadValidSchema is LoadSchema followed by validation, treating the first
// problem as fatal.
func loadValidSchema(dir string) (*ir.SchemaSpec, error) {
	result, err := LoadSchema(dir)
	if err != nil {
		return nil, err
	}
	if verrs := compiler.Validate(result.Spec); len(verrs) > 0 {
		return nil, &LoadError{Code: verrs[0].Code, Message: verrs[0].Message}
	}
	return result.Spec, nil
}
