package util

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

func ExtractUnknownArgs(flags *pflag.FlagSet, args []string) []string {
	var unknownArgs []string

	for i := 0; i < len(args); i++ {
		var (
			f *pflag.Flag
			a = args[i]
		)

		// A bare "-" or "" is positional
		if len(a) > 1 && a[0] == '-' {
			if a[1] == '-' {
				f = flags.Lookup(strings.SplitN(a[2:], "=", 2)[0])
			} else {
				for _, s := range a[1:] {
					f = flags.ShorthandLookup(string(s))
					if f == nil {
						break
					}
				}
			}
		}

		if f != nil {
			if f.NoOptDefVal == "" && i+1 < len(args) && f.Value.String() == args[i+1] {
				i++
			}

			continue
		}

		unknownArgs = append(unknownArgs, a)
	}

	return unknownArgs
}

// OverrideWith runs load, which may overwrite the variables the flags
// are bound to, and then restores every flag set explicitly on the
// command line, so flags take precedence over whatever load wrote.
func OverrideWith(flags *pflag.FlagSet, load func() error) error {
	changed := make(map[string]string)

	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	if err := load(); err != nil {
		return err
	}

	for name, value := range changed {
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("failed to restore flag %s: %w", name, err)
		}
	}

	return nil
}
