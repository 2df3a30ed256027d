package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/models"
)

var (
	statsTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))
	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B1B8C7")).
			Width(14)
	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E6EAF2"))
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entity counts from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := db.Initialize(cfg.DBPath); err != nil {
			return err
		}
		defer db.Close()

		counts := []struct {
			label string
			model any
		}{
			{"Users", &models.User{}},
			{"Tasks", &models.Task{}},
			{"Boards", &models.Board{}},
			{"Memberships", &models.BoardUser{}},
		}

		fmt.Println(statsTitleStyle.Render("taskboard stats"))
		for _, c := range counts {
			var n int64
			if err := db.DB.Model(c.model).Count(&n).Error; err != nil {
				return err
			}
			fmt.Printf("%s %s\n",
				statsLabelStyle.Render(c.label),
				statsValueStyle.Render(fmt.Sprintf("%d", n)))
		}

		var done int64
		if err := db.DB.Model(&models.Task{}).
			Where("status = ?", models.StatusDone).Count(&done).Error; err != nil {
			return err
		}
		fmt.Printf("%s %s\n",
			statsLabelStyle.Render("Closed tasks"),
			statsValueStyle.Render(fmt.Sprintf("%d", done)))
		return nil
	},
}
