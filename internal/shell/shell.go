package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"proto-matcher/internal/common"
	"proto-matcher/internal/config"
	"proto-matcher/internal/workspace"
)

const prompt = "\n> "

// Shell owns the loaded workspace and the terminal streams.
type Shell struct {
	store *config.Store
	log   logrus.FieldLogger
	in    *bufio.Reader
	out   io.Writer

	ws   *workspace.Workspace
	quit bool
}

// New creates a Shell reading commands and answers from in.
func New(store *config.Store, log logrus.FieldLogger, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		store: store,
		log:   log,
		in:    bufio.NewReader(in),
		out:   out,
	}
}

// Workspace returns the loaded workspace, nil before Load.
func (s *Shell) Workspace() *workspace.Workspace {
	return s.ws
}

// Load reads the config, asks for missing input paths and loads both schemas.
func (s *Shell) Load() error {
	cfg, generated, err := s.store.Load()
	if err != nil {
		return err
	}

	if generated {
		fmt.Fprintf(s.out, "Generated %s\n", s.store.Path())
	}

	if missing := cfg.MissingInputs(); len(missing) > 0 {
		if cfg, err = s.askInputs(missing); err != nil {
			return err
		}
	}

	ws, err := workspace.Load(cfg, s.log)
	if err != nil {
		return err
	}

	s.ws = ws

	ref, obs := ws.Schema(workspace.SideReference), ws.Schema(workspace.SideObfuscated)
	fmt.Fprintf(s.out, "Loaded %d reference and %d obfuscated signatures.\n", ref.Registry.Len(), obs.Registry.Len())

	return nil
}

var inputLabels = map[string]string{
	config.KeyRefDescriptorFile: "reference descriptor set (protoc --descriptor_set_out)",
	config.KeyObsDescriptorFile: "obfuscated descriptor set (protoc --descriptor_set_out)",
}

// askInputs asks for each missing path, writes the answers back and reloads the config.
func (s *Shell) askInputs(keys []string) (config.Config, error) {
	for _, key := range keys {
		answer, err := s.ask(fmt.Sprintf("Enter the path to the %s:\n", inputLabels[key]))
		if err != nil {
			return config.Config{}, err
		}

		if answer == "" {
			continue
		}

		if err := s.store.Set(key, answer); err != nil {
			return config.Config{}, err
		}
	}

	cfg, _, err := s.store.Load()

	return cfg, err
}

// ask prints question and reads one trimmed line.
func (s *Shell) ask(question string) (string, error) {
	fmt.Fprint(s.out, question)

	line, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// Run reads commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Type help for a list of commands.")

	for !s.quit {
		line, err := s.ask(prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		if err := s.Exec(ctx, line); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}

	return nil
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if common.IsEmpty(args) {
		return nil
	}

	root := &cobra.Command{
		Use:           "proto-matcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(s.Commands()...)
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.out)
	root.SetIn(s.in)

	return root.ExecuteContext(ctx)
}

// Quit reports whether the quit command ran.
func (s *Shell) Quit() bool {
	return s.quit
}
