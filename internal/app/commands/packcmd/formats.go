package packcmd

import (
	"github.com/spf13/pflag"

	"github.com/acronis/go-applib/pkg/archive"
)

var _ pflag.Value = (*formatValue)(nil)

// formatValue is a pflag.Value restricted to the formats archive knows about.
type formatValue archive.Format

// String is used both by fmt.Print and by Cobra in help text
func (f *formatValue) String() string {
	return archive.Format(*f).String()
}

// Set must have pointer receiver so it doesn't change the value of a copy
func (f *formatValue) Set(v string) error {
	format, err := archive.ParseFormat(v)
	if err != nil {
		return err
	}
	*f = formatValue(format)
	return nil
}

// Type is only used in help text
func (f *formatValue) Type() string {
	return "format"
}
