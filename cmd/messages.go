package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/repository"
	"github.com/spf13/cobra"
)

var (
	messagesCompany string
	messagesLimit   int
	messagesYes     bool
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Read or clear agent test chat messages",
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the most recent test messages of a company",
	RunE:  runMessagesList,
}

var messagesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every test message of a company",
	RunE:  runMessagesClear,
}

func init() {
	messagesCmd.PersistentFlags().StringVar(&messagesCompany, "company", "", "Company ID (required)")
	messagesListCmd.Flags().IntVar(&messagesLimit, "limit", 20, "Number of messages")
	messagesClearCmd.Flags().BoolVar(&messagesYes, "yes", false, "Confirm the deletion")

	messagesCmd.AddCommand(messagesListCmd)
	messagesCmd.AddCommand(messagesClearCmd)
}

func openConversations() (*repository.ConversationRepository, func(), error) {
	repo, closeDB, err := openRepository()
	if err != nil {
		return nil, nil, err
	}
	return repository.NewConversationRepository(repo.DB()), closeDB, nil
}

func runMessagesList(cmd *cobra.Command, args []string) error {
	if err := requireCompany(messagesCompany); err != nil {
		return err
	}
	conversations, closeDB, err := openConversations()
	if err != nil {
		return err
	}
	defer closeDB()

	messages, err := conversations.ListTestMessages(cmd.Context(), messagesCompany, messagesLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tROLE\tCONTENT")
	for _, m := range messages {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.CreatedAt.Format(time.DateTime), m.Role, oneLine(m.Content, 100))
	}
	return tw.Flush()
}

func runMessagesClear(cmd *cobra.Command, args []string) error {
	if err := requireCompany(messagesCompany); err != nil {
		return err
	}
	if !messagesYes {
		return fmt.Errorf("refusing to delete messages without --yes")
	}
	conversations, closeDB, err := openConversations()
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := conversations.DeleteTestMessages(cmd.Context(), messagesCompany)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d messages\n", n)
	return nil
}

// oneLine flattens s and cuts it to max runes
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
