package main

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"

	"github.com/apocnet/apoc-ledger/pkg/repo"
)

var configCMD = &cli.Command{
	Name:  "config",
	Usage: "The config manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Generate default config and genesis config(if not exist)",
			Action: generate,
		},
		{
			Name:   "show",
			Usage:  "Show the complete config processed by the environment variable",
			Action: show,
		},
		{
			Name:   "show-genesis",
			Usage:  "Show the complete genesis config processed by the environment variable",
			Action: showGenesis,
		},
	},
}

func generate(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if fileExist(filepath.Join(p, repo.CfgFileName)) {
		fmt.Println("apoc-ledger repo already exists")
		return nil
	}

	if err := repo.Default(p).Flush(); err != nil {
		return err
	}
	fmt.Printf("config successfully generated in %s\n", p)
	return nil
}

func show(ctx *cli.Context) error {
	rep, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	return printTOML(rep.Config)
}

func showGenesis(ctx *cli.Context) error {
	rep, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	return printTOML(rep.GenesisConfig)
}

func loadRepo(ctx *cli.Context) (*repo.Repo, error) {
	p, err := getRootPath(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Load(p)
}

func printTOML(config any) error {
	raw, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
