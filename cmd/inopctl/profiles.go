package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/config"
	"github.com/RowanDark/inop/internal/redact"
)

func openProfiles(cfg config.Config) (*cipher.ProfileStore, error) {
	if strings.TrimSpace(cfg.ProfilesDir) == "" {
		return nil, fmt.Errorf("profiles_dir is not configured (set it in %s or INOP_PROFILES_DIR)", config.FileName)
	}
	store := cipher.NewProfileStore(cfg.ProfilesDir, nil)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (c *cli) runProfiles(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "profiles subcommand required (list, show, save, delete)")
		return 2
	}

	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintf(c.stderr, "profiles: %v\n", err)
		return 1
	}
	store, err := openProfiles(cfg)
	if err != nil {
		fmt.Fprintf(c.stderr, "profiles: %v\n", err)
		return 1
	}

	switch args[0] {
	case "list":
		return c.runProfilesList(store, args[1:])
	case "show":
		return c.runProfilesShow(store, args[1:])
	case "save":
		return c.runProfilesSave(store, cfg, args[1:])
	case "delete":
		return c.runProfilesDelete(store, args[1:])
	default:
		fmt.Fprintf(c.stderr, "unknown profiles subcommand: %s\n", args[0])
		return 2
	}
}

func (c *cli) runProfilesList(store *cipher.ProfileStore, args []string) int {
	fs := flag.NewFlagSet("profiles list", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	query := fs.String("q", "", "only list profiles whose name, description, suite or tags match")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	profiles := store.List()
	if *query != "" {
		profiles = store.Search(*query)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(c.stdout, "no profiles")
		return 0
	}
	for _, p := range profiles {
		line := fmt.Sprintf("%s\t%s", p.Name, p.Settings.Suite)
		if len(p.Tags) > 0 {
			line += "\t[" + strings.Join(p.Tags, ",") + "]"
		}
		if p.Description != "" {
			line += "\t" + p.Description
		}
		fmt.Fprintln(c.stdout, line)
	}
	return 0
}

// runProfilesShow prints a profile with its key material masked unless
// -reveal is given.
func (c *cli) runProfilesShow(store *cipher.ProfileStore, args []string) int {
	fs := flag.NewFlagSet("profiles show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	reveal := fs.Bool("reveal", false, "print master key, rings, notches and plugs in clear")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "profiles show requires exactly one profile name")
		return 2
	}
	p, ok := store.Get(fs.Arg(0))
	if !ok {
		fmt.Fprintf(c.stderr, "profile %q not found\n", fs.Arg(0))
		return 1
	}

	var view any = p
	if !*reveal {
		data, err := json.Marshal(p)
		if err != nil {
			fmt.Fprintf(c.stderr, "profiles: %v\n", err)
			return 1
		}
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			fmt.Fprintf(c.stderr, "profiles: %v\n", err)
			return 1
		}
		if settings, ok := generic["settings"].(map[string]any); ok {
			generic["settings"] = redact.Map(settings)
		}
		view = generic
	}

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		fmt.Fprintf(c.stderr, "profiles: %v\n", err)
		return 1
	}
	return 0
}

// runProfilesSave stores the configured session, or a freshly generated
// one, under a name.
func (c *cli) runProfilesSave(store *cipher.ProfileStore, cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("profiles save", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	description := fs.String("description", "", "free text description")
	tags := fs.String("tags", "", "comma separated tags")
	generate := fs.String("generate", "", "draw random settings for this suite instead of using the configured session")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "profiles save requires exactly one profile name")
		return 2
	}

	settings := cfg.Session
	if *generate != "" {
		var err error
		settings, err = config.Generate(*generate, nil, cipher.CryptoSource{})
		if err != nil {
			fmt.Fprintf(c.stderr, "profiles: %v\n", err)
			return 2
		}
	}

	profile := &cipher.Profile{
		Name:        fs.Arg(0),
		Description: *description,
		Tags:        splitTags(*tags),
		Settings:    settings,
		Flags:       cfg.Pipeline,
	}
	if existing, ok := store.Get(profile.Name); ok {
		profile.CreatedAt = existing.CreatedAt
	}
	if err := store.Save(profile); err != nil {
		fmt.Fprintf(c.stderr, "profiles: %v\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "saved profile %s (%s)\n", profile.Name, profile.Settings.Suite)
	return 0
}

func (c *cli) runProfilesDelete(store *cipher.ProfileStore, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "profiles delete requires exactly one profile name")
		return 2
	}
	if _, ok := store.Get(args[0]); !ok {
		fmt.Fprintf(c.stderr, "profile %q not found\n", args[0])
		return 1
	}
	if err := store.Delete(args[0]); err != nil {
		fmt.Fprintf(c.stderr, "profiles: %v\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "deleted profile %s\n", args[0])
	return 0
}

func splitTags(raw string) []string {
	var out []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
