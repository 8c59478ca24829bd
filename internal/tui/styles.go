package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	WonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	LostStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Strikethrough(true)

	GameLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	hiddenCellStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3C3C3C"))

	clearedCellStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#1E1E1E"))

	flagCellStyle = hiddenCellStyle.
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	mineCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#FF6B6B")).
			Bold(true)
)

// numberColors follows the classic minesweeper palette for 1 through 8.
var numberColors = [9]lipgloss.Color{
	"",
	"#4A90E2",
	"#04B575",
	"#FF6B6B",
	"#7D56F4",
	"#B5651D",
	"#20B2AA",
	"#FAFAFA",
	"#A0A0A0",
}
