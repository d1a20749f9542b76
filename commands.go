package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"remindbot/parser"
	"remindbot/reminder"
	"remindbot/remindme"
)

const atLayout = "2006-01-02 15:04"

var (
	parseAt        string
	requireMessage bool
	userFlag       string
	listAll        bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <spec...>",
	Short: "Show when a specification would be due, without storing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := time.Now()
		if parseAt != "" {
			var err error
			ref, err = time.ParseInLocation(atLayout, parseAt, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --at %q, expected %s", parseAt, atLayout)
			}
		}

		p := newParser()
		if requireMessage {
			p = remindme.New(remindme.RequireMessage())
		}

		res, err := p.Parse(strings.Join(args, " "), ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "at:      %s\n", res.At.Format(reminder.DisplayLayout))
		fmt.Fprintf(out, "message: %s\n", res.Message)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <spec...>",
	Short: "Store a new reminder",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newParser().Parse(strings.Join(args, " "), time.Now())
		if err != nil {
			return err
		}

		user := currentUser()
		message, tags := parser.ExtractTags(res.Message)
		if message == "" {
			message, tags = res.Message, nil
		}
		r := reminder.New(res.At, message, user, "")
		r.Tags = tags

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.AddReminder(cmd.Context(), r, user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", r.ID, r.Display(), r.Message)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminders of a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		reminders, err := store.ForUser(cmd.Context(), currentUser())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDUE\tSTATUS\tMESSAGE\tTAGS")
		for _, r := range reminders {
			if !listAll && r.Status != reminder.Pending {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Display(), r.Status, r.Message, strings.Join(r.Tags, ","))
		}
		return tw.Flush()
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid reminder id %q: %w", args[0], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		return store.RemoveReminder(cmd.Context(), id)
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <id>",
	Short: "Add a user to an existing reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid reminder id %q: %w", args[0], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		return store.AddUser(cmd.Context(), id, currentUser())
	},
}

var ackCmd = &cobra.Command{
	Use:   "ack <id>",
	Short: "Acknowledge a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid reminder id %q: %w", args[0], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		return store.SetStatus(cmd.Context(), id, reminder.Acknowledged)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseAt, "at", "", "reference time ("+atLayout+"), default now")
	parseCmd.Flags().BoolVar(&requireMessage, "require-message", false, "fail when no message is given")

	for _, c := range []*cobra.Command{addCmd, listCmd, subscribeCmd, tuiCmd} {
		c.Flags().StringVarP(&userFlag, "user", "u", "", "user (default from config)")
	}
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include triggered and acknowledged reminders")
}

func currentUser() string {
	if userFlag != "" {
		return userFlag
	}
	return cfg.User.Default
}
