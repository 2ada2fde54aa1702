package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/quickstart-go/internal/domain"
)

const requestHeader = "--- request ---"

// Presenter prints pipeline results. The guide, the prompt preview and the
// single error line go to out; diagnostics that must not mix with a failed
// run go to errOut.
type Presenter struct {
	out    io.Writer
	errOut io.Writer

	header   lipgloss.Style
	errLabel lipgloss.Style
	faint    lipgloss.Style
}

// NewPresenter builds a presenter whose styles degrade to plain text when
// the writers are not terminals.
func NewPresenter(out, errOut io.Writer) *Presenter {
	outRenderer := lipgloss.NewRenderer(out)
	errRenderer := lipgloss.NewRenderer(errOut)
	return &Presenter{
		out:      out,
		errOut:   errOut,
		header:   outRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		errLabel: outRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		faint:    errRenderer.NewStyle().Faint(true),
	}
}

// Outcome prints a successful run: the optional request dump, then either
// the guide text or, offline, the prompt preview.
func (p *Presenter) Outcome(outcome domain.Outcome) {
	if len(outcome.RequestBody) > 0 {
		p.requestDump(p.out, p.header, outcome.RequestBody)
		fmt.Fprintln(p.out)
	}

	if outcome.Offline {
		fmt.Fprintln(p.out, p.header.Render("--- prompt preview ("+domain.EnvEnableOpenAI+"=false) ---"))
		fmt.Fprintln(p.out, outcome.Prompt.String())
		return
	}

	if outcome.Result != nil {
		fmt.Fprintln(p.out, strings.TrimRight(outcome.Result.Text, "\n"))
	}
}

// Error prints one error line on out. A request dump, if any, goes to errOut
// so that out never carries more than the error.
func (p *Presenter) Error(err error, outcome domain.Outcome) {
	if err == nil {
		return
	}
	if len(outcome.RequestBody) > 0 {
		p.requestDump(p.errOut, p.faint, outcome.RequestBody)
	}
	fmt.Fprintln(p.out, p.errLabel.Render(errorLabel(err))+" "+errorMessage(err))
}

func (p *Presenter) requestDump(w io.Writer, style lipgloss.Style, body []byte) {
	fmt.Fprintln(w, style.Render(requestHeader))
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Fprintln(w, string(body))
		return
	}
	fmt.Fprintln(w, pretty.String())
}

func errorLabel(err error) string {
	if de, ok := domain.AsError(err); ok {
		return fmt.Sprintf("error [%s/%s]:", de.Kind, de.Reason)
	}
	return "error:"
}

func errorMessage(err error) string {
	de, ok := domain.AsError(err)
	if !ok {
		return err.Error()
	}
	if de.Cause == nil {
		return de.Message
	}
	return de.Message + ": " + de.Cause.Error()
}
