package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	cmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Permanently remove deleted and expired entries",
		Run:   runPrune,
	}

	journalCmd.AddCommand(cmd, pruneCmd)
}

func runRm(cmd *cobra.Command, args []string) {
	hard, _ := cmd.Flags().GetBool("hard")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Rm(cmd.Context(), store.RmParams{ID: args[0], Hard: hard}); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
}

func runPrune(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Prune(cmd.Context())
	if err != nil {
		exitErr("prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"pruned":%d}`+"\n", n)
}
