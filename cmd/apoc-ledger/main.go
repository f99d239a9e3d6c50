package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/apocnet/apoc-ledger/pkg/repo"
)

func main() {
	loadEnvFile()

	app := cli.NewApp()
	app.Name = repo.AppName
	app.Usage = "Token ledger and vesting accrual system contracts"
	app.Compiled = time.Now()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "repo",
			Usage: "Work path",
		},
	}

	app.Commands = []*cli.Command{
		configCMD,
		genesisCMD,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadEnvFile() {
	envFile := os.Getenv("APOC_LEDGER_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if fileExist(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Printf("load env file %s failed: %s\n", envFile, err)
		}
	}
}

func fileExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func getRootPath(ctx *cli.Context) (string, error) {
	p := ctx.String("repo")
	if p == "" {
		var err error
		p, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return p, nil
}
