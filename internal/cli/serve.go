package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the adaptation operations over HTTP",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: configured addr)")
	cmd.Flags().Bool("record", false, "Record every adaptation in the journal")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	record, _ := cmd.Flags().GetBool("record")
	if addr == "" {
		addr = cfg.Addr
	}

	a, err := cfg.Adapter()
	if err != nil {
		exitErr("load profiles", err)
	}
	asm, err := cfg.Assembler()
	if err != nil {
		exitErr("configure assembler", err)
	}

	opts := server.Options{
		Adapter:       a,
		Assembler:     asm,
		NarratorVoice: cfg.NarratorVoice,
	}
	if record {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		opts.Journal = s
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(opts).ListenAndServe(ctx, addr); err != nil {
		exitErr("serve", err)
	}
}
