package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/config"
)

func (c *cli) runGenConfig(args []string) int {
	flags := flag.NewFlagSet("genconfig", flag.ContinueOnError)
	flags.SetOutput(c.stderr)
	suite := flags.String("suite", alphabet.SuiteINOP38, "suite to draw settings for")
	out := flags.String("o", config.FileName, "output path, or - for stdout")
	force := flags.Bool("force", false, "overwrite an existing file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	settings, err := config.Generate(*suite, nil, cipher.CryptoSource{})
	if err != nil {
		fmt.Fprintf(c.stderr, "genconfig: %v\n", err)
		return 2
	}
	cfg := config.Default()
	cfg.Session = settings

	if *out == "-" {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(c.stderr, "genconfig: %v\n", err)
			return 1
		}
		_, _ = c.stdout.Write(data)
		return 0
	}

	if !*force {
		if _, err := os.Stat(*out); err == nil {
			fmt.Fprintf(c.stderr, "config already exists at %s; refusing to overwrite (use -force)\n", *out)
			return 2
		} else if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(c.stderr, "stat config: %v\n", err)
			return 1
		}
	}
	if err := config.Save(*out, cfg); err != nil {
		fmt.Fprintf(c.stderr, "genconfig: %v\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "wrote %s session to %s\n", settings.Suite, *out)
	return 0
}
