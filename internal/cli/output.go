package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"artify/internal/entity"
	"artify/internal/notify"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headStyle    = lipgloss.NewStyle().Bold(true)
)

func printNotice(w io.Writer, n notify.Notice) {
	switch n.Level {
	case notify.LevelSuccess:
		fmt.Fprintln(w, successStyle.Render("ok")+" "+n.Message)
	case notify.LevelError:
		msg := n.Message
		if n.Err != nil {
			msg += ": " + n.Err.Error()
		}
		fmt.Fprintln(w, errorStyle.Render("error")+" "+msg)
	default:
		fmt.Fprintln(w, infoStyle.Render("info")+" "+n.Message)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printArtworks(w io.Writer, arts []entity.Artwork) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tARTIST\tPRICE\tLIKES\tVISIBILITY")
	for _, a := range arts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			a.ID, a.Title, dash(a.Category), dash(a.OwnerName), formatPrice(a.Price), a.LikeCount, a.Visibility)
	}
	_ = tw.Flush()
}

func printArtwork(w io.Writer, a entity.Artwork) {
	fmt.Fprintln(w, headStyle.Render(a.Title))
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", a.ID)
	fmt.Fprintf(tw, "Artist\t%s <%s>\n", dash(a.OwnerName), a.OwnerEmail)
	fmt.Fprintf(tw, "Category\t%s\n", dash(a.Category))
	fmt.Fprintf(tw, "Medium\t%s\n", dash(a.Medium))
	fmt.Fprintf(tw, "Dimensions\t%s\n", dash(a.Dimensions))
	fmt.Fprintf(tw, "Price\t%s\n", formatPrice(a.Price))
	fmt.Fprintf(tw, "Likes\t%d\n", a.LikeCount)
	fmt.Fprintf(tw, "Visibility\t%s\n", a.Visibility)
	fmt.Fprintf(tw, "Image\t%s\n", dash(a.ImageURL))
	_ = tw.Flush()
	if a.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, a.Description)
	}
}

func formatPrice(p entity.Price) string {
	return fmt.Sprintf("$%.2f", float64(p))
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// confirmPrompt asks a yes/no question on the command's streams. Anything
// but y or yes is a no, and so is end of input.
func confirmPrompt(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(cmd.ErrOrStderr())
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
