package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/api"
	"github.com/abhisek/quizdeck/internal/quiz"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for browser clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{llm: true})
		if err != nil {
			return err
		}
		defer e.close()

		srvCfg := e.cfg.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			srvCfg.Addr = addr
		}

		srv := api.NewServer(srvCfg, api.Deps{
			Tree:             e.tree,
			Generator:        e.generator(),
			History:          e.history(),
			Distribution:     e.cfg.Distribution(),
			StrictAssessment: e.cfg.Assessment.Strict,
			AssessmentCount:  e.cfg.QuestionCount(quiz.ModeAssessment),
		})

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from server.addr)")
}
