package golemoci

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/regclient/regclient/config"

	"github.com/golemcloud/golem-agent-sdk/golemerr"
)

// registryCredential is one entry of a credentials file: the registry
// hostname it applies to, plus a user/pass or bearer token.
type registryCredential struct {
	Registry string `yaml:"registry"`
	User     string `yaml:"user"`
	Pass     string `yaml:"pass"`
	Token    string `yaml:"token"`
}

// credentialsFile is the shape of the local registry-credentials file
// publish/pull reads, a YAML document — not part of the
// agent schema wire format, which is why it is kept in its own file and
// decoded with gopkg.in/yaml.v3 rather than the encoding/json used for
// schema bundles.
type credentialsFile struct {
	Registries []registryCredential `yaml:"registries"`
}

// LoadCredentials reads path (typically ~/.golem/oci-credentials.yaml) and
// returns the regclient config.Host entries it describes, one per
// registries[] entry. A missing file is not an error: publish/pull against
// an anonymous-access registry needs no credentials.
func LoadCredentials(path string) ([]config.Host, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, golemerr.Wrap(golemerr.SchemaConstruction, err, "reading oci credentials file %s", path)
	}

	var cf credentialsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, golemerr.Wrap(golemerr.SchemaConstruction, err, "parsing oci credentials file %s", path)
	}

	hosts := make([]config.Host, 0, len(cf.Registries))
	for _, c := range cf.Registries {
		hosts = append(hosts, config.Host{
			Name:  c.Registry,
			User:  c.User,
			Pass:  c.Pass,
			Token: c.Token,
		})
	}
	return hosts, nil
}
