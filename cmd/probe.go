package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/HugoGarcez/agentpromp/tools/repository"
	"github.com/HugoGarcez/agentpromp/tools/websocket"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	probeURL        string
	probeMessage    string
	probeTimeout    time.Duration
	probeMaxReplies int
	probeCompany    string
	probeRecord     bool
	probeToken      string
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Talk to the agent like the web client does",
}

var probeWSCmd = &cobra.Command{
	Use:   "ws",
	Short: "Send one chat message over the websocket and print the replies",
	Long: `Dial the agent chat websocket, send --message as a text message and print
the replies received until --timeout or until the server closes.

With --record the exchange is saved as TestMessage rows of --company.`,
	RunE: runProbeWS,
}

func init() {
	f := probeWSCmd.Flags()
	f.StringVar(&probeURL, "url", "", "Websocket URL (required)")
	f.StringVar(&probeMessage, "message", "", "Message to send (required)")
	f.DurationVar(&probeTimeout, "timeout", 20*time.Second, "How long to wait for replies")
	f.IntVar(&probeMaxReplies, "max-replies", 0, "Stop after this many replies")
	f.StringVar(&probeCompany, "company", "", "Company the recorded messages belong to")
	f.BoolVar(&probeRecord, "record", false, "Save the exchange as TestMessage rows")
	f.StringVar(&probeToken, "token", "", "Access token sent as the access_token cookie")
	probeWSCmd.MarkFlagRequired("url")
	probeWSCmd.MarkFlagRequired("message")

	probeCmd.AddCommand(probeWSCmd)
}

func runProbeWS(cmd *cobra.Command, args []string) error {
	if probeRecord {
		if err := requireCompany(probeCompany); err != nil {
			return err
		}
	}

	probe := websocket.NewProbe(probeURL, probeTimeout)
	probe.MaxReplies = probeMaxReplies
	if probeToken != "" {
		probe.Header.Set("Cookie", "access_token="+probeToken)
	}

	exchange, err := probe.Run(cmd.Context(), probeMessage)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range exchange.Replies {
		fmt.Fprintf(out, "[%s] %s\n", m.Type, m.Content)
	}
	fmt.Fprintf(out, "%d replies in %s, closed by server: %s\n",
		len(exchange.Replies), exchange.Duration.Round(time.Millisecond), yesNo(exchange.Closed))

	if !probeRecord {
		return nil
	}

	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	saved, err := recordExchange(cmd.Context(), repository.NewConversationRepository(repo.DB()), probeCompany, exchange)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded %d messages for company %s\n", saved, probeCompany)
	return nil
}

// MessageSaver stores chat turns
type MessageSaver interface {
	SaveTestMessage(ctx context.Context, message *models.TestMessage) error
}

// recordExchange saves the sent message and, when the agent answered with
// text, its joined reply
func recordExchange(ctx context.Context, store MessageSaver, companyID string, exchange *websocket.Exchange) (int, error) {
	sentAt := time.Now().Add(-exchange.Duration)
	turns := []*models.TestMessage{{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Role:      models.MessageRoleUser,
		Content:   exchange.Sent.Content,
		CreatedAt: sentAt,
	}}
	if reply := exchange.Text(); reply != "" {
		turns = append(turns, &models.TestMessage{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			Role:      models.MessageRoleAssistant,
			Content:   reply,
			CreatedAt: sentAt.Add(exchange.Duration),
		})
	}

	for i, m := range turns {
		if err := store.SaveTestMessage(ctx, m); err != nil {
			return i, err
		}
	}
	return len(turns), nil
}
