// Package naming converts between the (name, slice) identifiers users work
// with and the flat node names the engine stores. The mapping is a pure data
// transformation, so a single value type shared by composition is enough.
package naming

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soundprediction/ktbn/pkg/types"
)

// DefaultSeparator joins a variable name and its time slice in flat names.
const DefaultSeparator = "#"

// Codec encodes and decodes flat node names. The zero value is not usable;
// construct with New or Default.
type Codec struct {
	sep string
}

// Default returns a codec using DefaultSeparator.
func Default() Codec {
	return Codec{sep: DefaultSeparator}
}

// New returns a codec with a custom separator.
func New(separator string) Codec {
	if separator == "" {
		separator = DefaultSeparator
	}
	return Codec{sep: separator}
}

// Separator returns the separator in use.
func (c Codec) Separator() string {
	return c.sep
}

// Encode builds the flat name for one variable replica. The logical name must
// not contain the separator, otherwise Decode would be ambiguous.
func (c Codec) Encode(name string, slice int) (string, error) {
	if strings.Contains(name, c.sep) {
		return "", types.Validationf("variable name %q contains the separator %q", name, c.sep)
	}
	return fmt.Sprintf("%s%s%d", name, c.sep, slice), nil
}

// EncodeKey is Encode for a UserKey.
func (c Codec) EncodeKey(key types.UserKey) (string, error) {
	return c.Encode(key.Name, key.Slice)
}

// Decode splits a flat name back into its (name, slice) form. The input must
// contain the separator followed by an integer slice.
func (c Codec) Decode(flat string) (types.UserKey, error) {
	name, suffix, ok := strings.Cut(flat, c.sep)
	if !ok {
		return types.UserKey{}, types.Validationf("flat name %q does not contain the separator %q", flat, c.sep)
	}
	slice, err := strconv.Atoi(suffix)
	if err != nil {
		return types.UserKey{}, types.Validationf("flat name %q has a non-integer slice %q", flat, suffix)
	}
	return types.UserKey{Name: name, Slice: slice}, nil
}

// Valid reports whether name is usable as a logical variable name.
func (c Codec) Valid(name string) bool {
	return name != "" && !strings.Contains(name, c.sep)
}
