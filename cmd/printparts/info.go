package main

import (
	"fmt"

	"github.com/maruel/subcommands"
	"github.com/soypat/solid/parts"
	"gopkg.in/yaml.v3"
)

var cmdDims = &subcommands.Command{
	UsageLine: "dims [-config file]",
	ShortDesc: "prints derived part dimensions",
	LongDesc:  "Prints the dimensions derived from the configuration as YAML and reports invalid parameters.",
	CommandRun: func() subcommands.CommandRun {
		c := &dimsRun{}
		c.Flags.StringVar(&c.config, "config", "", "YAML configuration file read over the default parameters")
		return c
	},
}

type dimsRun struct {
	subcommands.CommandRunBase
	config string
}

func (c *dimsRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	cfg, err := parts.ReadConfig(c.config)
	if err != nil {
		return printErr(a, err)
	}
	b, err := yaml.Marshal(struct {
		Tray parts.TrayDims `yaml:"tray"`
		Case parts.CaseDims `yaml:"case"`
	}{cfg.Tray.Dims(), cfg.Case.Dims()})
	if err != nil {
		return printErr(a, err)
	}
	a.GetOut().Write(b)
	if err := cfg.Validate(); err != nil {
		return printErr(a, fmt.Errorf("invalid configuration:\n%w", err))
	}
	return 0
}

var cmdParams = &subcommands.Command{
	UsageLine: "params",
	ShortDesc: "prints the default configuration",
	LongDesc:  "Prints the default configuration as YAML. Use it as a starting point for -config files.",
	CommandRun: func() subcommands.CommandRun {
		return &paramsRun{}
	},
}

type paramsRun struct {
	subcommands.CommandRunBase
}

func (c *paramsRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	b, err := parts.DefaultConfig().YAML()
	if err != nil {
		return printErr(a, err)
	}
	a.GetOut().Write(b)
	return 0
}
