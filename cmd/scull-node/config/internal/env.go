package internal

import "strings"

// EnvPrefix is a prefix of ENV variables related
// to storage node configuration.
const EnvPrefix = "scull"

// EnvSeparator is a section separator in ENV variables.
const EnvSeparator = "_"

// Env returns ENV variable name of the configuration
// value addressed by the given path.
func Env(path ...string) string {
	return strings.ToUpper(
		strings.Join(append([]string{EnvPrefix}, path...), EnvSeparator),
	)
}
