package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/scrybe/internal/ansi"
	"github.com/arcanaland/scrybe/internal/browser"
	"github.com/arcanaland/scrybe/internal/card"
	"github.com/arcanaland/scrybe/internal/catalog"
	"github.com/arcanaland/scrybe/internal/config"
	"github.com/arcanaland/scrybe/internal/scryfall"
)

var (
	noArt    bool
	plainArt bool
)

func addDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noArt, "no-art", false, "Print card details without ANSI art")
	cmd.Flags().BoolVar(&plainArt, "plain", false, "Draw the art without colors")
}

// displayState prints the current card of a browser state with its ANSI
// art, followed by the alternate arts.
func displayState(ctx context.Context, st browser.State) {
	for _, line := range actionLines(st, cfg.Catalog()) {
		fmt.Println(line)
	}
	if st.Failure != nil {
		fmt.Println(colorize.RedString("%s failed (%s): %s", st.Failure.Op, st.Failure.Kind, st.Failure.Message))
	}
	if st.Card == nil {
		fmt.Println("No card loaded")
		return
	}

	art := ""
	if !noArt {
		art = loadArt(ctx, st.Card)
	}
	displayCard(st.Card, art)

	if len(st.AlternateArts) > 0 {
		fmt.Println(colorize.CyanString("Alternate arts: ") + colorize.HiWhiteString("%d", len(st.AlternateArts)))
		for _, a := range st.AlternateArts {
			fmt.Printf("  %s\n", a.ID)
		}
	}
}

// actionLines describes what produced the state: the selected color and
// the search with its filters.
func actionLines(st browser.State, cat *catalog.Catalog) []string {
	var lines []string
	if st.SelectedColor != "" {
		lines = append(lines, infoLine("Color", cat.ColorLabel(st.SelectedColor)))
	}
	if st.Op == browser.OpSearch && st.Query != "" {
		search := st.Query
		if !st.Filters.IsZero() {
			search += " [" + strings.TrimSpace(scryfall.BuildQuery("", st.Filters)) + "]"
		}
		lines = append(lines, infoLine("Search", search))
	}
	return lines
}

func loadArt(ctx context.Context, c *card.Card) string {
	url := c.ImageURL(card.ImageNormal)
	if url == "" {
		return ""
	}
	r := ansi.NewRenderer(filepath.Join(config.GetCacheDir(), "ansi_cache"), cfg.Art.Width, cfg.Art.Height)
	r.TrueColor = !plainArt
	art, err := r.Render(ctx, url)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
			"url":   url,
		}).Warn("Failed to render card art")
	}
	return art
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	var result []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}

		currentLine := ""
		for _, word := range words {
			if len(currentLine) == 0 {
				currentLine = word
			} else if len(currentLine)+1+len(word) <= width {
				currentLine += " " + word
			} else {
				result = append(result, currentLine)
				currentLine = word
			}
		}
		result = append(result, currentLine)
	}
	return result
}

func infoLine(label, value string) string {
	return colorize.CyanString("%-8s", label+":") + colorize.HiWhiteString("%s", value)
}

// displayCard displays the card information next to its ANSI art
func displayCard(c *card.Card, ansiArt string) {
	var ansiLines []string
	maxAnsiWidth := 0
	if ansiArt != "" {
		ansiLines = strings.Split(strings.TrimSuffix(ansiArt, "\n"), "\n")
		for _, line := range ansiLines {
			if w := ansi.VisibleWidth(line); w > maxAnsiWidth {
				maxAnsiWidth = w
			}
		}
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	var infoLines []string
	infoLines = append(infoLines, infoLine("Card", c.Name))
	if c.ManaCost != "" {
		infoLines = append(infoLines, infoLine("Mana", c.ManaCost))
	}
	if c.TypeLine != "" {
		infoLines = append(infoLines, infoLine("Type", c.TypeLine))
	}
	if c.SetName != "" {
		infoLines = append(infoLines, infoLine("Set", fmt.Sprintf("%s (%s)", c.SetName, strings.ToUpper(c.Set))))
	}
	if c.Rarity != "" {
		infoLines = append(infoLines, infoLine("Rarity", c.Rarity))
	}
	infoLines = append(infoLines, infoLine("ID", c.ID))

	spacing := 4
	infoStartCol := 0
	if maxAnsiWidth > 0 {
		infoStartCol = maxAnsiWidth + spacing
	}
	infoWidth := width - infoStartCol - 2
	if infoWidth < 20 {
		infoWidth = 20
	}

	if text := c.Text(); text != "" {
		infoLines = append(infoLines, "")
		infoLines = append(infoLines, wrapText(text, infoWidth)...)
	}

	fmt.Println()
	maxLines := max(len(ansiLines), len(infoLines))
	for i := 0; i < maxLines; i++ {
		fmt.Print("  ")
		if i < len(ansiLines) {
			fmt.Print(ansiLines[i])
			fmt.Print(strings.Repeat(" ", infoStartCol-ansi.VisibleWidth(ansiLines[i])))
		} else {
			fmt.Print(strings.Repeat(" ", infoStartCol))
		}
		if i < len(infoLines) {
			fmt.Print(infoLines[i])
		}
		fmt.Println()
	}
	fmt.Println()
}
