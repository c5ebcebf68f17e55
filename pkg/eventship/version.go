package eventship

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/bft-labs/eventship/pkg/batch"
	"github.com/bft-labs/eventship/pkg/envelope"
	"github.com/bft-labs/eventship/pkg/log"
)

// Version information for the eventship module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

type moduleVersion struct {
	version    string
	minVersion string
}

func modules() map[string]moduleVersion {
	return map[string]moduleVersion{
		"eventship": {Version, MinCompatibleVersion},
		"envelope":  {envelope.Version, envelope.MinCompatibleVersion},
		"batch":     {batch.Version, batch.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}
}

// ModuleVersions returns the version of every sub-module.
func ModuleVersions() map[string]string {
	out := make(map[string]string)
	for name, m := range modules() {
		out[name] = m.version
	}
	return out
}

// CompatibilityMatrix returns the minimum compatible version of every sub-module.
func CompatibilityMatrix() map[string]string {
	out := make(map[string]string)
	for name, m := range modules() {
		out[name] = m.minVersion
	}
	return out
}

// validateModuleVersions checks that no module is below its minimum
// compatible version.
func validateModuleVersions() error {
	for name, m := range modules() {
		ok, err := isVersionCompatible(m.version, m.minVersion)
		if err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

func isVersionCompatible(version, minVersion string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, err
	}
	c, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
