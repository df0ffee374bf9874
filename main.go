package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is the application version, set via ldflags.
var version = "dev"

// stopMessage is printed when the run is interrupted.
const stopMessage = " Stopping…"

// pickFiles is the interactive selector; tests replace it.
var pickFiles = runInteractiveFinder

const examples = `  crc32 foo.txt                 CRC32 of a single file
  crc32 foo.txt bar.txt         Multiple files can be calculated
  crc32 "*.zip" "*.rar" "*.*"   Wildcards can be used
  Paths that are not reachable regular files are skipped.`

// newRootCmd builds the crc32 command over fs. Each command carries its own
// viper instance so flags, env and config never leak between commands.
func newRootCmd(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	var cfgFile string
	var interactiveMode bool

	cmd := &cobra.Command{
		Use:     "crc32 FILE...",
		Short:   "Simple CRC32 hash tool.",
		Long:    "crc32 prints the CRC32 (IEEE) checksum of every file matched by the given paths or wildcards.",
		Example: examples,
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if interactiveMode {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecksums(cmd.Context(), v, fs, stdout, stderr, args, interactiveMode)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/crc32/config.toml)")
	flags.CountP("verbose", "v", "Display additional information (full paths and a summary)")
	v.BindPFlag("verbose", flags.Lookup("verbose"))
	flags.BoolP("omit-path", "o", false, "Omit file path. Overridden by '-v'")
	v.BindPFlag("omit_path", flags.Lookup("omit-path"))
	flags.Bool("gitignore", false, "Skip matches ignored by ./.gitignore")
	v.BindPFlag("gitignore", flags.Lookup("gitignore"))
	flags.StringP("file", "f", "", "Save output to specified file")
	v.BindPFlag("file", flags.Lookup("file"))
	flags.BoolP("clipboard", "c", false, "Copy output to clipboard")
	v.BindPFlag("clipboard", flags.Lookup("clipboard"))
	flags.BoolVar(&interactiveMode, "interactive", false, "Pick files from the current directory interactively")
	flags.String("log-level", "warn", "Diagnostics level: debug, info, warn, error")
	v.BindPFlag("log_level", flags.Lookup("log-level"))
	flags.String("log-file", "", "Also append diagnostics to this file")
	v.BindPFlag("log_file", flags.Lookup("log-file"))

	v.SetDefault("log_level", "warn")
	return cmd
}

// initConfig reads the config file and CRC32_* environment variables.
// A missing default config file is not an error; a missing --config file is.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Only the per-user location; never the working directory.
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "crc32"))
		}
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix("CRC32")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// optionsFromConfig resolves display options after flags, env and config are merged.
func optionsFromConfig(v *viper.Viper) Options {
	return Options{
		Verbose:          v.GetInt("verbose"),
		OmitPath:         v.GetBool("omit_path"),
		RespectGitignore: v.GetBool("gitignore"),
	}
}

func runChecksums(ctx context.Context, v *viper.Viper, fs afero.Fs, stdout, stderr io.Writer, args []string, interactive bool) error {
	log, err := newLogger(stderr, v.GetString("log_level"), v.GetString("log_file"))
	if err != nil {
		return err
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.WithField("file", used).Debug("using config file")
	}

	opts := optionsFromConfig(v)
	patterns := args
	if interactive {
		selected, err := pickFiles(fs)
		if err != nil {
			return fmt.Errorf("interactive mode: %w", err)
		}
		if selected == nil {
			log.Info("interactive selection aborted")
			return nil
		}
		patterns = append(selected, args...)
	}

	processor, err := NewProcessor(fs, opts, log)
	if err != nil {
		return err
	}
	results, err := processor.Process(ctx, patterns)
	if err != nil {
		return err
	}
	summary := summarize(results)
	log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"hashed":    summary.Hashed,
		"denied":    summary.Denied,
	}).Info("batch complete")

	target := outputTarget{
		File:      v.GetString("file"),
		Clipboard: v.GetBool("clipboard"),
	}
	return writeOutput(fs, stdout, renderBatch(results, opts), target, log)
}

// run executes the command and maps the outcome to an exit code.
func run(ctx context.Context, fs afero.Fs, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(fs, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stdout, stopMessage)
		return 1
	default:
		fmt.Fprintln(stderr, "Error:", err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
		return 1
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, afero.NewOsFs(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
