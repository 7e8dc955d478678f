package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/HugoGarcez/agentpromp/tools/postman"
	"github.com/spf13/cobra"
)

var (
	postmanURL  string
	postmanFile string
)

var postmanCmd = &cobra.Command{
	Use:   "postman",
	Short: "Read published Postman collections",
}

var postmanFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a collection and list its endpoints",
	Long: `Download a collection (or read an exported one with --file), save it as
postman_collection and its flattened endpoint list as postman_endpoints, and
print a METHOD URL table.`,
	RunE: runPostmanFetch,
}

func init() {
	postmanFetchCmd.Flags().StringVar(&postmanURL, "url", "", "Collection URL (default POSTMAN_URL)")
	postmanFetchCmd.Flags().StringVar(&postmanFile, "file", "", "Read an exported collection instead")

	postmanCmd.AddCommand(postmanFetchCmd)
}

func runPostmanFetch(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	switch {
	case postmanFile != "":
		data, err = postman.Load(postmanFile)
	default:
		url := postmanURL
		if url == "" {
			url = cfg.Postman.URL
		}
		if url == "" {
			return fmt.Errorf("--url, --file or POSTMAN_URL is required")
		}
		data, err = postman.Fetch(cmd.Context(), &http.Client{Timeout: cfg.HTTP.Timeout}, url)
	}
	if err != nil {
		return err
	}

	endpoints, err := postman.Endpoints(data)
	if err != nil {
		return err
	}

	var collection interface{}
	if err := json.Unmarshal(data, &collection); err != nil {
		return fmt.Errorf("failed to decode collection: %w", err)
	}
	if err := emit(cmd, "postman_collection", collection, false); err != nil {
		return err
	}
	if err := emit(cmd, "postman_endpoints", endpoints, false); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, e := range endpoints {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Method, e.URL, e.Name)
	}
	return tw.Flush()
}
