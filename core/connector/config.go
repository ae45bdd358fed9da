package connector

import (
	_ "embed"
	"strings"
	"text/template"

	up "go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

type Config struct {
	Database string `yaml:"database"`
	LogLevel string `yaml:"log_level"`

	OSName              string `yaml:"os_name"`
	DisplaynameTemplate string `yaml:"displayname_template"`
	SyncFullHistory     bool   `yaml:"sync_full_history"`

	displaynameTemplate *template.Template `yaml:"-"`
}

type umConfig Config

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	err := node.Decode((*umConfig)(c))
	if err != nil {
		return err
	}
	return c.PostProcess()
}

func (c *Config) PostProcess() error {
	var err error
	c.displaynameTemplate, err = template.New("displayname").Parse(c.DisplaynameTemplate)
	return err
}

func upgradeConfig(helper up.Helper) {
	helper.Copy(up.Str, "database")
	helper.Copy(up.Str, "log_level")
	helper.Copy(up.Str, "os_name")
	helper.Copy(up.Str, "displayname_template")
	helper.Copy(up.Bool, "sync_full_history")
}

// Upgrader fills missing keys in an on-disk config from the embedded
// example, so old config files keep working across releases.
func (c *Config) Upgrader() up.BaseUpgrader {
	return &up.StructUpgrader{
		SimpleUpgrader: up.SimpleUpgrader(upgradeConfig),
		Blocks: [][]string{
			{"displayname_template"},
		},
		Base: ExampleConfig,
	}
}

type DisplaynameParams struct {
	PushName string
	Phone    string
}

// FormatDisplayname renders the configured display name for a direct
// chat peer.
func (c *Config) FormatDisplayname(pushName, phone string) string {
	if c.displaynameTemplate == nil {
		return pushName
	}
	var nameBuf strings.Builder
	err := c.displaynameTemplate.Execute(&nameBuf, &DisplaynameParams{
		PushName: pushName,
		Phone:    phone,
	})
	if err != nil {
		return pushName
	}
	return nameBuf.String()
}
