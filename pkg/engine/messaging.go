package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// PostInstallMessage is a single package's post-install note (spec §4.6),
// carrying an optional Tengo boolean expression gating whether it applies
// and a body that may reference "success"/"failure" template variables.
type PostInstallMessage struct {
	Filter string // Tengo expression; empty means always applies
	Body   string
}

// Messenger renders post-install messages the same way pkg/hook's
// TengoExecutor evaluates hook scripts: a short-lived Tengo VM per message,
// seeded with the outcome as bound variables (spec §4.6).
type Messenger struct {
	Out io.Writer
}

// Render prints msg's body for pkg if its filter (when present) evaluates
// truthy against the outcome, substituting "${success}"/"${failure}" the way
// opam's message syntax does. A filter evaluation error is treated as
// "does not apply" rather than aborting the apply: a broken filter in one
// package's metadata must not block every other package's messages.
func (m *Messenger) Render(pkg Package, msg PostInstallMessage, outcome Outcome) {
	success := outcome.Status == OutcomeSuccess
	if msg.Filter != "" {
		ok, err := evalFilter(msg.Filter, success)
		if err != nil || !ok {
			return
		}
	}

	body := substituteString(msg.Body, success)
	header := fmt.Sprintf("-> %s:", pkg.String())
	if !success {
		header = fmt.Sprintf("!! %s:", pkg.String())
	}
	fmt.Fprintln(m.Out, header)
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(m.Out, "   %s\n", line)
	}
}

// evalFilter runs a Tengo boolean expression with "success"/"failure" bound,
// mirroring pkg/hook.TengoExecutor.Execute's script setup.
func evalFilter(expr string, success bool) (bool, error) {
	script := tengo.NewScript([]byte(fmt.Sprintf("__filter_result__ := (%s)", expr)))
	script.SetImports(stdlib.GetModuleMap("fmt", "os", "strings"))
	if err := script.Add("success", success); err != nil {
		return false, fmt.Errorf("failed to bind success to filter: %w", err)
	}
	if err := script.Add("failure", !success); err != nil {
		return false, fmt.Errorf("failed to bind failure to filter: %w", err)
	}

	compiled, err := script.Run()
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed: %w", err)
	}
	v := compiled.Get("__filter_result__")
	if v == nil {
		return false, nil
	}
	b, ok := v.Value().(bool)
	return ok && b, nil
}

// substituteString replaces "${success}"/"${failure}" placeholders in a
// message body, spec §4.6's minimal template language.
func substituteString(body string, success bool) string {
	replacer := strings.NewReplacer(
		"${success}", fmt.Sprintf("%v", success),
		"${failure}", fmt.Sprintf("%v", !success),
	)
	return replacer.Replace(body)
}
