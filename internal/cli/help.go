package cli

import (
	"regexp"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/ui"
)

const usageTemplate = `{{header "Usage:"}}{{if .Runnable}}
  {{usage .UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{command .CommandPath}} [command]{{end}}{{if .HasExample}}

{{header "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{header "Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{command (printf "%-10s" .Name)}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{header "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | flags}}{{end}}{{if .HasAvailableInheritedFlags}}

{{header "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces | flags}}{{end}}{{if .HasAvailableSubCommands}}

{{header "Use"}} {{command (printf "%s [command] --help" .CommandPath)}} {{header "for more about a command."}}{{end}}
`

var (
	flagNameRe = regexp.MustCompile(`(-\w|--[\w-]+)`)
	requiredRe = regexp.MustCompile(`<[^>]+>`)
	optionalRe = regexp.MustCompile(`\[[^\]]+\]`)
	leadWordRe = regexp.MustCompile(`^\w+`)
)

// colorizeHelp installs the styled usage template on cmd and its children
func colorizeHelp(cmd *cobra.Command) {
	cobra.AddTemplateFuncs(template.FuncMap{
		"header": func(s string) string {
			if s == "Usage:" {
				return "\n" + ui.StyleHeader.Render(s)
			}
			return ui.StyleHeader.Render(s)
		},
		"command": func(s string) string { return ui.StyleCommand.Render(s) },
		"flags": func(s string) string {
			return flagNameRe.ReplaceAllStringFunc(s, func(m string) string { return ui.StyleFlag.Render(m) })
		},
		// <args> are blue, [args] dim and the binary name cyan
		"usage": func(s string) string {
			s = requiredRe.ReplaceAllStringFunc(s, func(m string) string { return ui.StylePath.Render(m) })
			s = optionalRe.ReplaceAllStringFunc(s, func(m string) string { return ui.StyleDim.Render(m) })
			return leadWordRe.ReplaceAllStringFunc(s, func(m string) string { return ui.StyleCommand.Render(m) })
		},
	})
	cmd.SetUsageTemplate(usageTemplate)
}
