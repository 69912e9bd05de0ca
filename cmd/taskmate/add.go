package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dori/taskmate/internal/app"
	"github.com/dori/taskmate/internal/auth"
	"github.com/dori/taskmate/internal/quickadd"
	"github.com/spf13/cobra"
)

var addUser string

var addCmd = &cobra.Command{
	Use:   "add <task>",
	Short: "Quick add a task",
	Long: `Quick add a task for a registered user.

  taskmate add --user me@example.com "Buy groceries"
  taskmate add -u me@example.com "Review PR @work #Work !high due:tomorrow"

  Tags:      @tag          (e.g. @home, @work, @errands)
  Project:   #name         (linked by id if the project exists)
  Priority:  !low !medium !high
  Due date:  due:tomorrow due:friday due:2024-01-15`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addUser, "user", "u", "", "Email of the task owner")
	addCmd.MarkFlagRequired("user")
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	user, err := a.Accounts.FindByEmail(ctx, addUser)
	if errors.Is(err, auth.ErrUserNotFound) {
		return fmt.Errorf("no user registered as %s", addUser)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	entry := quickadd.Parse(strings.Join(args, " "), now)

	projects, err := a.Tracker.ListProjects(ctx, user.ID)
	if err != nil {
		return err
	}

	task, err := a.Tracker.CreateTask(ctx, user.ID, entry.TaskInput(projects))
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render("Created:"), task.Title)
	if task.DueDate != nil {
		fmt.Println(labelStyle.Render("Due:"), quickadd.FormatDue(*task.DueDate, now))
	}
	fmt.Println(labelStyle.Render("Priority:"), priorityStyle(task.Priority).Render(string(task.Priority)))
	if len(task.Tags) > 0 {
		fmt.Println(labelStyle.Render("Tags:"), strings.Join(task.Tags, ", "))
	}
	if task.Project.ID != nil || task.Project.Legacy != "" {
		fmt.Println(labelStyle.Render("Project:"), entry.Project)
	}
	return nil
}
