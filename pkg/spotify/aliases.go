package spotify

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Aliases maps a normalized, lowercased band name to the query that finds it
// in the catalog. It covers artists whose indexed name differs from the name
// people commonly use.
type Aliases map[string]string

// DefaultAliases returns a fresh copy of the built-in correction table.
func DefaultAliases() Aliases {
	return Aliases{
		"chk chk chk": "!!!",
		"other":       "another",
	}
}

// Resolve returns the corrected query for name, or name unchanged when no
// alias applies. Lookup ignores case and diacritics.
func (a Aliases) Resolve(name string) string {
	if q, ok := a[matchKey(name)]; ok {
		return q
	}
	return name
}

// Merge returns a new table holding a's entries overridden by other's.
func (a Aliases) Merge(other Aliases) Aliases {
	out := make(Aliases, len(a)+len(other))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range other {
		out[matchKey(k)] = v
	}
	return out
}

// LoadAliases reads an alias table from a TOML file of the form
//
//	[aliases]
//	"chk chk chk" = "!!!"
//
// Keys are normalized on load so they may be written with any case or
// accents.
func LoadAliases(path string) (Aliases, error) {
	var file struct {
		Aliases map[string]string `toml:"aliases"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	out := make(Aliases, len(file.Aliases))
	for k, v := range file.Aliases {
		out[matchKey(k)] = v
	}
	return out, nil
}
