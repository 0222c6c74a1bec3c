package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/varalys/plugconf/internal/host"
	"github.com/varalys/plugconf/internal/loader"
)

// PrintRegistrations writes one row per plugin registration, in registration
// order.
func PrintRegistrations(w io.Writer, regs []host.Registration) error {
	if len(regs) == 0 {
		_, err := fmt.Fprintln(w, "No plugins registered")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header("Plugin", "Keys", "Top-level keys", "Hooked")
	for _, r := range regs {
		keys := strings.Join(r.Keys, ", ")
		if r.Config == nil {
			keys = "(not a map)"
		}
		if err := table.Append([]string{r.ModuleID, strconv.Itoa(len(r.Keys)), keys, strconv.FormatBool(r.Hooked)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintModules writes one row per discovered module file.
func PrintModules(w io.Writer, mods []loader.ModuleInfo) error {
	if len(mods) == 0 {
		_, err := fmt.Fprintln(w, "No modules found")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header("Module", "Path")
	for _, m := range mods {
		if err := table.Append([]string{m.ID, m.Path}); err != nil {
			return err
		}
	}
	return table.Render()
}
