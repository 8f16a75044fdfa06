package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/config"
	"github.com/RowanDark/inop/internal/logging"
)

// onOff is a flag accepting on/off as well as the strconv booleans. It
// remembers whether it was set so unset flags leave the config alone.
type onOff struct {
	value bool
	set   bool
}

func (o *onOff) String() string {
	if o == nil || !o.set {
		return ""
	}
	if o.value {
		return "on"
	}
	return "off"
}

func (o *onOff) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on":
		o.value = true
	case "off":
		o.value = false
	default:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("expected on or off, got %q", s)
		}
		o.value = v
	}
	o.set = true
	return nil
}

// pipelineFlags are the options shared by encrypt and decrypt.
type pipelineFlags struct {
	doublePass    onOff
	padding       onOff
	stepReflector onOff
	block         int
	profile       string
}

func (p *pipelineFlags) register(fs *flag.FlagSet) {
	fs.Var(&p.doublePass, "double-pass", "encrypt, reverse, encrypt again (on|off)")
	fs.Var(&p.padding, "padding", "wrap the message in a marker and cover traffic (on|off)")
	fs.Var(&p.stepReflector, "step-reflector", "advance the reflector on every keypress (on|off)")
	fs.IntVar(&p.block, "block", 0, "block size for grouping and padding (0 keeps the configured value)")
	fs.StringVar(&p.profile, "profile", "", "use the settings and flags of a stored profile")
}

// resolve merges the configuration, an optional profile and the command
// line, in increasing precedence.
func (p *pipelineFlags) resolve(cfg config.Config) (cipher.Settings, cipher.Flags, error) {
	settings, flags := cfg.Session, cfg.Pipeline
	if p.profile != "" {
		store, err := openProfiles(cfg)
		if err != nil {
			return cipher.Settings{}, cipher.Flags{}, err
		}
		profile, ok := store.Get(p.profile)
		if !ok {
			return cipher.Settings{}, cipher.Flags{}, fmt.Errorf("profile %q not found", p.profile)
		}
		settings, flags = profile.Settings, profile.Flags
	}
	if p.doublePass.set {
		flags.DoublePass = p.doublePass.value
	}
	if p.padding.set {
		flags.Padding = p.padding.value
	}
	if p.stepReflector.set {
		flags.StepReflector = p.stepReflector.value
	}
	if p.block > 0 {
		flags.Block = p.block
	}
	return settings, flags, nil
}

func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg, nil); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *cli) logger(cfg config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	logger, err := logging.New(c.stderr, level, cfg.Log.Format)
	if err != nil {
		logger, _ = logging.New(c.stderr, level, "text")
	}
	return logger
}

func (c *cli) pipeline(pf *pipelineFlags) (*cipher.Pipeline, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	settings, flags, err := pf.resolve(cfg)
	if err != nil {
		return nil, err
	}
	return cipher.NewPipeline(settings, nil, flags, cipher.WithLogger(c.logger(cfg)))
}

func (c *cli) runEncrypt(args []string) int {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var pf pipelineFlags
	pf.register(fs)
	message := fs.String("m", "", "plaintext to encrypt; without it an interactive prompt starts")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(c.stderr, "encrypt takes no positional arguments; pass the message with -m")
		return 2
	}

	p, err := c.pipeline(&pf)
	if err != nil {
		fmt.Fprintf(c.stderr, "encrypt: %v\n", err)
		return 1
	}

	if *message != "" {
		if err := c.encryptAndVerify(p, *message); err != nil {
			fmt.Fprintf(c.stderr, "encrypt: %v\n", err)
			return 1
		}
		return 0
	}
	return c.repl(p)
}

// encryptAndVerify prints the grouped ciphertext, the marker and the
// decryption of the ciphertext.
func (c *cli) encryptAndVerify(p *cipher.Pipeline, message string) error {
	ct, marker, err := p.Encrypt(message)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Encrypted: %s\n", cipher.Blocks(ct, p.Flags().Block))
	if marker != "" {
		fmt.Fprintf(c.stdout, "Marker: %s\n", marker)
	}
	pt, err := p.Decrypt(ct, marker)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Fprintf(c.stdout, "Decrypted: %s\n", alphabet.Restore(pt))
	return nil
}

func (c *cli) repl(p *cipher.Pipeline) int {
	suite := p.Session().Suite()
	fmt.Fprintf(c.stdout, "Loaded suite '%s' with alphabet length %d.\n", suite.Name, suite.Alphabet.Size())
	fmt.Fprintln(c.stdout, "Type blank line to quit.")

	scanner := bufio.NewScanner(c.stdin)
	for {
		fmt.Fprint(c.stdout, "Message to encrypt: ")
		if !scanner.Scan() {
			fmt.Fprintln(c.stdout)
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		if err := c.encryptAndVerify(p, line); err != nil {
			fmt.Fprintf(c.stderr, "encrypt: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(c.stderr, "read input: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) runDecrypt(args []string) int {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var pf pipelineFlags
	pf.register(fs)
	ciphertext := fs.String("c", "", "ciphertext to decrypt (grouping spaces are ignored)")
	marker := fs.String("marker", "", "marker printed by encrypt when padding is on")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*ciphertext) == "" {
		fmt.Fprintln(c.stderr, "decrypt requires -c")
		return 2
	}

	p, err := c.pipeline(&pf)
	if err != nil {
		fmt.Fprintf(c.stderr, "decrypt: %v\n", err)
		return 1
	}
	pt, err := p.Decrypt(*ciphertext, *marker)
	if err != nil {
		if errors.Is(err, cipher.ErrMarkerNotFound) {
			fmt.Fprintln(c.stderr, "decrypt: marker not found; check the key, the flags and the marker")
			return 1
		}
		fmt.Fprintf(c.stderr, "decrypt: %v\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "Decrypted: %s\n", alphabet.Restore(pt))
	return 0
}
