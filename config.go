package roadgrade

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MaterialsConfig Per-road-class harmonization parameter overrides, loaded
// from YAML. Classes absent from the file keep the defaults.
type MaterialsConfig struct {
	Materials map[string]HarmonizationParams `yaml:"materials"`
}

// LoadMaterialsConfig reads material parameters from YAML file, layering the
// file's values over the defaults per class.
func LoadMaterialsConfig(fname string) (*MaterialsConfig, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read config file")
	}

	raw := struct {
		Materials map[string]yaml.Node `yaml:"materials"`
	}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "Can't parse config file")
	}

	cfg := &MaterialsConfig{
		Materials: make(map[string]HarmonizationParams),
	}
	for name, node := range raw.Materials {
		if getRoadClass(name) == 0 {
			return nil, errors.Errorf("Unknown road class '%s' in config", name)
		}
		params := DefaultHarmonizationParams()
		if err := node.Decode(&params); err != nil {
			return nil, errors.Wrapf(err, "Can't parse parameters for '%s'", name)
		}
		params.BlendFunc = BlendFunctionFromString(params.BlendFunctionName)
		cfg.Materials[name] = params
	}
	return cfg, nil
}

// Apply sets configured parameters on every matching spline of the network
func (cfg *MaterialsConfig) Apply(net *RoadNetwork) {
	for _, spline := range net.Splines() {
		if params, ok := cfg.Materials[spline.RoadClass.String()]; ok {
			spline.Params = params
		}
	}
}
