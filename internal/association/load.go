package association

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LoadError reports a malformed or unreadable association table.
type LoadError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("association load failed for %s: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Loader reads and validates association tables.
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a Loader with struct validation configured to report
// field names by their JSON tags.
func NewLoader() *Loader {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Loader{validate: v}
}

// Load decodes an association table from r. The tableName is recorded as
// the table provenance reference on the returned association.
func (l *Loader) Load(r io.Reader, tableName string) (*Association, error) {
	var asn Association
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&asn); err != nil {
		return nil, &LoadError{Source: tableName, Cause: err}
	}
	if err := l.validate.Struct(&asn); err != nil {
		return nil, &LoadError{Source: tableName, Cause: err}
	}
	asn.TableName = tableName
	return &asn, nil
}

// LoadFile reads an association table from disk. The file's base name
// becomes the table provenance reference.
func (l *Loader) LoadFile(path string) (*Association, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Cause: err}
	}
	defer f.Close()
	return l.Load(f, filepath.Base(path))
}
