package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/growthlens/internal/adapters/repository"
	service "github.com/okian/growthlens/internal/app"
	"github.com/okian/growthlens/internal/report"
	"github.com/okian/growthlens/pkg/logger"
)

func newAnalyzeCmd(o *rootOptions) *cobra.Command {
	var format string
	var top int
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Rank tags and rating buckets per rating group",
		Long: `Analyze loads a snapshot file (default: snapshot_path) and prints, for each
rating group, summary statistics, the top tags by weighted growth score and the
problem rating buckets with the recommended one marked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.cfg.SnapshotPath
			if len(args) == 1 {
				path = args[0]
			}
			if top <= 0 {
				top = o.cfg.TopTags
			}
			f, err := report.New(report.WithFormat(format), report.WithTopTags(top))
			if err != nil {
				return err
			}

			log := logger.Named("analyze")
			svc := service.New(
				service.WithStore(repository.NewFileStore(path, repository.WithLogger(log))),
				service.WithLogger(log),
			)
			rep, err := svc.LoadAndAnalyze(cmd.Context())
			if err != nil {
				return err
			}
			return f.Write(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "output format (text, json)")
	cmd.Flags().IntVar(&top, "top", 0, "tag rows per group (default: top_tags)")
	return cmd
}
