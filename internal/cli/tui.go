package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/editor"
	"github.com/matzehuels/famtree/pkg/family"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// MemberListModel - Interactive member selection
// =============================================================================

// MemberListModel is the bubbletea model for browsing members. The cursor
// member's relationships are shown under the table; enter selects it.
type MemberListModel struct {
	Members  []family.Member
	Labels   map[string]string // id -> "Name (id)"
	Cursor   int
	Selected *family.Member
	Height   int
	Offset   int
}

// NewMemberListModel creates a new member list model.
func NewMemberListModel(members []family.Member) MemberListModel {
	labels := make(map[string]string, len(members))
	for _, m := range members {
		labels[m.ID] = m.Label()
	}
	return MemberListModel{
		Members: members,
		Labels:  labels,
		Height:  15,
	}
}

func (m MemberListModel) Init() tea.Cmd {
	return nil
}

func (m MemberListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Members)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Members) == 0 {
				return m, tea.Quit
			}
			sel := m.Members[m.Cursor]
			m.Selected = &sel
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		// leave room for the header, footer, and relationship pane
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m MemberListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Members"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show subtree  q quit"))
	b.WriteString("\n\n")

	if len(m.Members) == 0 {
		b.WriteString(listDimStyle.Render("No members to display."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Members))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		mem := m.Members[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, mem.ID, mem.Name, string(mem.Gender)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Gender").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Members) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if col == 3 {
				if s, ok := genderStyles[m.Members[idx].Gender]; ok {
					return s
				}
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.relationPane(m.Members[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Members))))

	return b.String()
}

// relationPane lists the outgoing edges of mem whose targets are known.
func (m MemberListModel) relationPane(mem family.Member) string {
	var b strings.Builder
	for _, r := range mem.Relations {
		label, ok := m.Labels[r.Target]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render(string(r.Kind)+" "+iconArrow), label)
	}
	if b.Len() == 0 {
		return listDimStyle.Render("  no relationships") + "\n"
	}
	return b.String()
}

// =============================================================================
// browse command
// =============================================================================

// browseCommand opens the interactive member browser and prints the
// subtree of the chosen member.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse members interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				if ed.Len() == 0 {
					printInfo("No members yet")
					return nil
				}

				p := tea.NewProgram(NewMemberListModel(ed.Members()), tea.WithContext(cmd.Context()))
				final, err := p.Run()
				if err != nil {
					return fmt.Errorf("browse: %w", err)
				}
				sel := final.(MemberListModel).Selected
				if sel == nil {
					return nil
				}

				out, err := ed.HierarchyFrom(sel.ID)
				if err != nil {
					return warnOrFail(err)
				}
				fmt.Fprint(cmd.OutOrStdout(), indent(out, "  "))
				return nil
			})
		},
	}
}
