package config

import (
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/pipeline"
)

// LoadScenario reads a run configuration from a TOML file and validates it.
//
//	engine = "btree"
//	operation = "insert"
//	degree = 2
//	targets = [10, 20, 5, 6, 12, 30, 7, 17]
func LoadScenario(path string) (pipeline.Options, error) {
	var opts pipeline.Options
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read scenario %s", path)
	}
	if err := checkUndecoded(meta, path); err != nil {
		return pipeline.Options{}, err
	}
	// Validate a copy so the caller's runner can still attach its logger.
	check := opts
	if err := check.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}
