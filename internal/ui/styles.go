package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mydehq/otr/internal/types"
)

// adaptive picks the dark or light variant by terminal background
func adaptive(dark, dark256, light, light256, ansi string) lipgloss.CompleteAdaptiveColor {
	return lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: dark, ANSI256: dark256, ANSI: ansi},
		Light: lipgloss.CompleteColor{TrueColor: light, ANSI256: light256, ANSI: ansi},
	}
}

var (
	colorHeader  = adaptive("#ffaf00", "214", "#af5f00", "130", "3")
	colorCommand = adaptive("#5fd7af", "79", "#00875f", "29", "6")
	colorPath    = adaptive("#87afff", "111", "#005faf", "25", "4")
	colorPattern = adaptive("#d7d787", "186", "#878700", "100", "11")
	colorDim     = adaptive("#a8a8a8", "248", "#585858", "240", "8")
	colorFlag    = adaptive("#ff8787", "210", "#af0000", "124", "1")

	StyleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	StyleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorCommand)
	StylePath    = lipgloss.NewStyle().Foreground(colorPath)
	StylePattern = lipgloss.NewStyle().Foreground(colorPattern)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleFlag    = lipgloss.NewStyle().Italic(true).Foreground(colorFlag)

	// StyleUnchanged marks a name that a run would leave as it is
	StyleUnchanged = lipgloss.NewStyle().Foreground(colorPattern)

	StyleBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCommand).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorHeader).
			Padding(0, 4).
			Align(lipgloss.Center)
)

// Theme is the huh theme used by every form
func Theme() *huh.Theme {
	return huh.ThemeCatppuccin()
}

// KeyMap maps esc to "back" and ctrl+c to "quit"; both end the form and
// the filter below tells them apart.
func KeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit.SetKeys("esc", "ctrl+c")
	km.Quit.SetHelp("ctrl+c", "quit")

	km.Select.Submit.SetHelp("enter", "choose • esc: back • ctrl+c: quit")
	km.MultiSelect.Submit.SetHelp("enter", "confirm • esc: back • ctrl+c: quit")
	km.Input.Next.SetHelp("enter", "next • esc: back • ctrl+c: quit")
	km.Input.Submit.SetHelp("enter", "submit • esc: back • ctrl+c: quit")
	km.Confirm.Submit.SetHelp("enter", "confirm • esc: back • ctrl+c: quit")
	return km
}

// ErrUserBack is returned when the user pressed esc to go one step back
var ErrUserBack = errors.New("user navigated back")

// ErrUserQuit is returned when the user pressed ctrl+c
var ErrUserQuit = fmt.Errorf("user quit: %w", types.ErrAborted)

var interceptedKey string

func keyFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			interceptedKey = "esc"
		case tea.KeyCtrlC:
			interceptedKey = "ctrl+c"
		}
	}
	return msg
}

// RunForm runs f with the esc/ctrl+c filter installed
func RunForm(f *huh.Form) error {
	interceptedKey = ""
	return f.WithTheme(Theme()).
		WithKeyMap(KeyMap()).
		WithProgramOptions(tea.WithFilter(keyFilter)).
		Run()
}

// HandleAbort turns huh's abort into ErrUserBack or ErrUserQuit depending
// on the key that caused it. Other errors pass through.
func HandleAbort(err error) error {
	if !errors.Is(err, huh.ErrUserAborted) {
		return err
	}
	if interceptedKey == "ctrl+c" {
		return ErrUserQuit
	}
	return ErrUserBack
}

// PrintBanner clears the screen and prints the otr header
func PrintBanner(subtitle string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println()
	fmt.Println(StyleBanner.Render("otr"))
	fmt.Println()
	if subtitle != "" {
		fmt.Println(StyleFlag.Render("  " + subtitle))
		fmt.Println()
	}
}

// ColorizeEvent styles event messages: "old -> new" renames and
// "label: value" pairs.
func ColorizeEvent(msg string) string {
	if left, right, ok := strings.Cut(msg, " -> "); ok {
		return fmt.Sprintf("%s %s %s",
			StyleDim.Render(left),
			StyleDim.Render("→"),
			StyleCommand.Render(right),
		)
	}
	if label, value, ok := strings.Cut(msg, ": "); ok {
		return fmt.Sprintf("%s %s", StyleHeader.Render(label+":"), StylePath.Render(value))
	}
	return msg
}

// HighlightYAML colours keys, values and comments of a YAML document
func HighlightYAML(input string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorCommand).Bold(true)
	valStyle := lipgloss.NewStyle().Foreground(colorPattern)

	lines := strings.Split(input, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			lines[i] = line[:idx] + StyleDim.Render(line[idx:])
			continue
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			lines[i] = valStyle.Render(line)
			continue
		}

		prefix := ""
		if trimmed := strings.TrimLeft(key, " "); strings.HasPrefix(trimmed, "- ") {
			cut := len(key) - len(trimmed) + 2
			prefix, key = key[:cut], key[cut:]
		}
		if strings.TrimSpace(val) == "" {
			lines[i] = prefix + keyStyle.Render(key) + ":"
		} else {
			lines[i] = prefix + keyStyle.Render(key) + ":" + valStyle.Render(val)
		}
	}
	return strings.Join(lines, "\n")
}
