package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sponsorboard/jobsync/internal/browse"
)

var browseLimit int

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored postings in the terminal",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().IntVar(&browseLimit, "limit", 200, "maximum postings to load (0 for all)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	sqlStore, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	postings, err := sqlStore.ListPostings(browseLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load postings: %v\n", err)
		os.Exit(1)
	}

	return browse.Run(postings)
}
