package region

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultAliases maps common shorthand spellings to the name used by the
// province boundary set.
func DefaultAliases() map[string]string {
	return map[string]string{
		"DIY":           "DAERAH ISTIMEWA YOGYAKARTA",
		"DI YOGYAKARTA": "DAERAH ISTIMEWA YOGYAKARTA",
		"DKI":           "DKI JAKARTA",
		"JAKARTA":       "DKI JAKARTA",
	}
}

// aliasFile is the on-disk alias format:
//
//	aliases:
//	  NTB: NUSA TENGGARA BARAT
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads additional aliases from a YAML file. Keys and values are
// folded the same way region identifiers are.
func LoadAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: read aliases %s", path)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "region: parse aliases %s", path)
	}
	out := make(map[string]string, len(f.Aliases))
	for k, v := range f.Aliases {
		out[fold(k)] = fold(v)
	}
	return out, nil
}
