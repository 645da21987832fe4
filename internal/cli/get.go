package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Retrieve a journal entry",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	journalCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	e, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}

	output(cmd, e, func() string { return e.Output })
}
