package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

const productName = "inop"
const cliBanner = productName + " CLI (inopctl)"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli carries the streams and global options shared by every subcommand.
type cli struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	configPath string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	fs := flag.NewFlagSet("inopctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.configPath, "config", "", "path to inop.yml (default ./inop.yml when present)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, cliBanner)
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "usage: inopctl [-config path] <command> [flags]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "commands:")
		fmt.Fprintln(stderr, "  encrypt    encrypt a message and verify it decrypts; starts a REPL without -m")
		fmt.Fprintln(stderr, "  decrypt    decrypt a ciphertext")
		fmt.Fprintln(stderr, "  wheels     list rotors and reflectors per suite")
		fmt.Fprintln(stderr, "  genconfig  write a configuration with randomly drawn settings")
		fmt.Fprintln(stderr, "  profiles   list, show, save or delete session profiles")
		fmt.Fprintln(stderr, "  version    print the version")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	switch rest[0] {
	case "encrypt":
		return c.runEncrypt(rest[1:])
	case "decrypt":
		return c.runDecrypt(rest[1:])
	case "wheels":
		return c.runWheels(rest[1:])
	case "genconfig":
		return c.runGenConfig(rest[1:])
	case "profiles":
		return c.runProfiles(rest[1:])
	case "version":
		return c.runVersion(rest[1:])
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", rest[0])
		return 2
	}
}
