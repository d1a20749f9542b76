package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"remindbot/parser"
	"remindbot/reminder"
	"remindbot/remindme"
	"remindbot/state"
)

var tags = []string{"work", "personal", "urgent", "meeting", "followup"}

var messages = []string{
	"Team standup meeting",
	"Review pull request",
	"Submit expense report",
	"Update project documentation",
	"Call with client",
	"Sprint planning",
	"Deploy to production",
	"Database backup check",
	"Bug triage meeting",
	"1:1 with manager",
	"Write unit tests",
	"Update dependencies",
	"API design review",
	"Release notes draft",
	"Customer feedback review",
	"Onboarding new team member",
	"Quarterly planning",
	"Certificate renewal",
	"Incident postmortem",
	"Team retrospective",
}

var partsOfDay = []string{"morning", "noon", "afternoon", "evening", "früh", "mittag", "abend"}

var units = []string{"minutes", "hours", "days", "weeks", "months"}

var (
	dbPath string
	count  int
	user   string
)

func main() {
	cmd := &cobra.Command{
		Use:          "generate_test_data",
		Short:        "Seed a reminder database with random reminders",
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "database to seed")
	cmd.Flags().IntVarP(&count, "count", "n", 200, "number of reminders")
	cmd.Flags().StringVarP(&user, "user", "u", "local", "owner of the generated reminders")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "reminders_test.db"
	}
	return filepath.Join(homeDir, ".remindbot", "test", "reminders.db")
}

// randomSpec builds a reminder specification in one of the supported forms.
func randomSpec(i int, ref time.Time) string {
	message := fmt.Sprintf("%s (%d)", messages[rand.Intn(len(messages))], i+1)

	if n := rand.Intn(6); n > 0 {
		perm := rand.Perm(len(tags))
		for j := 0; j < n; j++ {
			message += " #" + tags[perm[j]]
		}
	}

	switch rand.Intn(4) {
	case 0:
		return fmt.Sprintf("tomorrow %s %s", partsOfDay[rand.Intn(len(partsOfDay))], message)
	case 1:
		at := ref.AddDate(0, 0, 1+rand.Intn(365))
		return fmt.Sprintf("%s %02d:%02d %q", at.Format("2006-01-02"), 8+rand.Intn(11), rand.Intn(4)*15, message)
	case 2:
		return fmt.Sprintf("%d %s %s", 1+rand.Intn(12), units[rand.Intn(len(units))], message)
	default:
		return fmt.Sprintf("%d d %d h %s", rand.Intn(30), 1+rand.Intn(23), message)
	}
}

func run(cmd *cobra.Command, args []string) error {
	store, err := state.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	p := remindme.New(remindme.RequireMessage())
	now := time.Now()

	stored := 0
	for i := 0; i < count; i++ {
		// References up to 30 days back make some reminders already due
		ref := now.AddDate(0, 0, -rand.Intn(31))

		spec := randomSpec(i, ref)
		res, err := p.Parse(spec, ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %q: %v\n", spec, err)
			continue
		}

		message, reminderTags := parser.ExtractTags(res.Message)
		r := reminder.New(res.At, message, user, "test_generated")
		r.Tags = reminderTags
		if res.At.Before(now) {
			r.Status = reminder.Triggered
			if rand.Float32() < 0.5 {
				r.Status = reminder.Acknowledged
			}
		}

		if err := store.AddReminder(ctx, r, user); err != nil {
			return err
		}
		stored++
	}

	fmt.Printf("Generated %d test reminders for %s at %s\n", stored, user, store.Path())
	return nil
}
