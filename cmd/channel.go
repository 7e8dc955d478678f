package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/channel"
	"github.com/spf13/cobra"
)

var (
	channelMethod string
	channelBody   string
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Call the chat-routing webhook",
}

var channelShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Call showChannel with CHANNEL_TOKEN",
	Long: `Send one request to {CHANNEL_BASE_URL}/v2/api/external/{CHANNEL_TOKEN}/showChannel
and print the answer. Exits non-zero on a non-2xx status.`,
	RunE: runChannelShow,
}

func init() {
	channelShowCmd.Flags().StringVar(&channelMethod, "method", "POST", "HTTP method")
	channelShowCmd.Flags().StringVar(&channelBody, "body", "", "JSON request body")

	channelCmd.AddCommand(channelShowCmd)
}

func runChannelShow(cmd *cobra.Command, args []string) error {
	var body []byte
	if channelBody != "" {
		if !json.Valid([]byte(channelBody)) {
			return fmt.Errorf("--body is not valid JSON")
		}
		body = []byte(channelBody)
	}

	client := channel.NewClient(cfg.Channel.BaseURL, cfg.Channel.Token, cfg.HTTP.Timeout)
	result, err := client.ShowChannel(cmd.Context(), channelMethod, body)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d in %s\n", result.Status, result.Duration.Round(time.Millisecond))
	fmt.Fprintln(out, result.Body)

	if !result.OK() {
		return fmt.Errorf("showChannel returned status %d", result.Status)
	}
	return nil
}
