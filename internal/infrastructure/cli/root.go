package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/quickstart-go/internal/app"
	"github.com/doeshing/quickstart-go/internal/application/guide"
	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	// Spinner overrides the progress spinner; nil picks one for a terminal stderr.
	Spinner *Spinner
}

// ReportedError marks an error the presenter has already printed.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err was already printed for the user.
func IsReported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	var (
		container *app.Container
		verbose   bool
		dir       string
	)
	getContainer := func() *app.Container { return container }

	root := &cobra.Command{
		Use:   "quickstart",
		Short: "Generate a README quickstart guide for the current project",
		Long: "quickstart gathers recent shell history, project files and environment variable names,\n" +
			"then asks an OpenAI-compatible model to write a quickstart guide. Configure it with a .env file.",
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			built, err := app.BuildContainer(opts.Verbose || verbose)
			if err != nil {
				return err
			}
			container = built
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if container != nil {
				_ = container.Logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuide(cmd, container, dir, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")
	root.PersistentFlags().StringVarP(&dir, "dir", "C", "", "Project directory (default: current directory)")

	root.AddCommand(commands.NewDoctorCommand(getContainer, &dir))
	root.AddCommand(commands.NewVersionCommand())
	return root
}

func runGuide(cmd *cobra.Command, container *app.Container, dir string, opts Options) error {
	presenter := NewPresenter(opts.Stdout, opts.Stderr)

	spinner := opts.Spinner
	if spinner == nil {
		if f, ok := opts.Stderr.(*os.File); ok {
			spinner = NewTerminalSpinner(f, "Writing quickstart guide...")
		}
	}

	outcome, err := container.GuideService.Run(cmd.Context(), guide.Request{
		Dir:            dir,
		BeforeComplete: spinner.Start,
		AfterComplete:  spinner.Stop,
	})
	if err != nil {
		presenter.Error(err, outcome)
		return &ReportedError{Err: err}
	}
	presenter.Outcome(outcome)
	return nil
}

// ExitCode maps an error returned by the root command to a process exit status.
func ExitCode(err error) int {
	return domain.ExitCode(err)
}
