package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/newhook/flagtrack/internal/project"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/newhook/flagtrack/internal/tui"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive launcher (default)",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

const helpText = `flagtrack keeps your goals ("flags") honest.

  add        record a goal; it is scored for feasibility right away
  list       every flag, newest first (filter with --category/--status)
  update     record progress; 100 marks the flag completed
  check      stale flags, close deadlines and advice; good for cron
  report     write a dated report file
  serve      read-only web view

Feasibility looks at how far away the target date is, how specific the
description is, the title length and whether the goal is measurable
(daily, weekly, times, hours...).

Reminders: open flags without a check for 30 days, and deadlines within
30 days (urgent at 7, pressing at 14).`

func runMenu(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	out := cmd.OutOrStdout()
	notice := ""
	for {
		sel, err := tui.Run(os.Stdin, out, notice)
		if err != nil {
			return err
		}
		if sel.Action == tui.ActionQuit {
			fmt.Fprintln(out, "Bye! Good luck with your flags.")
			return nil
		}
		notice = ""
		if err := runSelection(ctx, out, proj, sel); err != nil {
			notice = "error: " + err.Error()
			fmt.Fprintln(out, errorStyle.Render(notice))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// runSelection executes one launcher choice.
func runSelection(ctx context.Context, out io.Writer, proj *project.Project, sel tui.Selection) error {
	switch sel.Action {
	case tui.ActionAdd:
		return addFlag(ctx, out, proj, store.NewFlag{
			Title:       sel.Values[tui.FieldTitle],
			Description: sel.Values[tui.FieldDescription],
			TargetDate:  sel.Values[tui.FieldTargetDate],
			Category:    sel.Values[tui.FieldCategory],
		})
	case tui.ActionList:
		return listFlags(ctx, out, proj, store.Filter{})
	case tui.ActionUpdate:
		progress, err := strconv.Atoi(sel.Values[tui.FieldProgress])
		if err != nil {
			return fmt.Errorf("progress must be a whole number: %q", sel.Values[tui.FieldProgress])
		}
		return updateFlag(ctx, out, proj, sel.Values[tui.FieldID], progress, sel.Values[tui.FieldNotes])
	case tui.ActionCheck:
		_, err := checkFlags(ctx, out, proj)
		return err
	case tui.ActionReport:
		return writeReport(ctx, out, proj, "")
	case tui.ActionServe:
		return serve(ctx, out, proj, "")
	case tui.ActionHelp:
		fmt.Fprintln(out, helpText)
		return nil
	default:
		return fmt.Errorf("unknown menu action %q", sel.Action)
	}
}
