package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/doeshing/quickstart-go/internal/app"
	"github.com/doeshing/quickstart-go/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container func() *app.Container, dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose .env, history, and project scanning setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container(), *dir)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container, dir string) error {
	if container == nil || container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context(), dir)

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	renderer := lipgloss.NewRenderer(out)
	styles := map[domain.HealthStatus]lipgloss.Style{
		domain.HealthOK:    renderer.NewStyle().Foreground(lipgloss.Color("42")),
		domain.HealthWarn:  renderer.NewStyle().Foreground(lipgloss.Color("214")),
		domain.HealthError: renderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
	for _, check := range report.Checks {
		label := "[" + strings.ToUpper(string(check.Status)) + "]"
		if style, ok := styles[check.Status]; ok {
			label = style.Render(label)
		}
		fmt.Fprintf(out, "%s %s - %s\n", label, check.Name, check.Details)
	}
}
