package cmd

import (
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// statusPrinters writes human-facing status lines. Stdout is reserved for
// command results so they can be piped.
type statusPrinters struct {
	info    *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
	section *pterm.SectionPrinter
}

func statusTo(w io.Writer) statusPrinters {
	return statusPrinters{
		info:    pterm.Info.WithWriter(w),
		success: pterm.Success.WithWriter(w),
		warning: pterm.Warning.WithWriter(w),
		section: pterm.DefaultSection.WithWriter(w),
	}
}

func status(cmd *cobra.Command) statusPrinters {
	return statusTo(cmd.ErrOrStderr())
}
