package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"feedvault/internal/bootstrap"
	"feedvault/internal/modules/feed/dto"
	"feedvault/internal/platform/config"
	"feedvault/internal/ui/report"
	"feedvault/internal/ui/theme"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, theme.Error.Render(err.Error()))
		os.Exit(1)
	}
}

type globalFlags struct {
	appData  string
	config   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "feedvault",
		Short:         "Archive a childcare activity feed and its photos and videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.appData, "app-data", ".feedvault", "directory holding the activity database and config")
	root.PersistentFlags().StringVar(&flags.config, "config", "", "config file (default <app-data>/config.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "trace|debug|info|warn|error")

	root.AddCommand(newMetadataCmd(&flags))
	root.AddCommand(newMediaCmd(&flags))
	return root
}

func loadApp(flags *globalFlags) (*bootstrap.App, config.Config, error) {
	cfg, err := config.New(flags.appData, flags.config)
	if err != nil {
		return nil, config.Config{}, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	app, err := bootstrap.New(cfg, bootstrap.Options{})
	if err != nil {
		return nil, config.Config{}, err
	}
	return app, cfg, nil
}

func newMetadataCmd(flags *globalFlags) *cobra.Command {
	var in dto.MetadataInput

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Download activity metadata into the local database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			out, err := app.FeedCLI.Metadata(ctx, in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), report.Metadata(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Login, "login", "", "guardian login")
	cmd.Flags().StringVar(&in.Student, "student", "", "student id or name substring")
	cmd.Flags().StringVar(&in.StartDate, "start-date", "", "UTC start date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&in.EndDate, "end-date", "", "UTC end date YYYY-MM-DD, inclusive")
	cmd.Flags().BoolVarP(&in.Headless, "headless", "n", false, "do not allow interactive login")
	cmd.Flags().BoolVarP(&in.IgnoreCachedAuth, "ignore-cached-auth", "l", false, "ignore the stored session token")
	cmd.Flags().BoolVarP(&in.ClearExisting, "clear-existing", "f", false, "delete stored activities for the student first")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func newMediaCmd(flags *globalFlags) *cobra.Command {
	var (
		in       dto.MediaInput
		lat, lon float64
	)

	cmd := &cobra.Command{
		Use:   "media",
		Short: "Download and tag media for stored activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cfg, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if in.DestinationDir == "" {
				in.DestinationDir = cfg.Media.Dir
			}
			in.Latitude, in.Longitude = cfg.Media.Latitude, cfg.Media.Longitude
			if cmd.Flags().Changed("lat") {
				in.Latitude = &lat
			}
			if cmd.Flags().Changed("lon") {
				in.Longitude = &lon
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			out, err := app.FeedCLI.Media(ctx, in)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), report.Media(out))
			return err
		},
	}
	cmd.Flags().StringVar(&in.DestinationDir, "dl-dir", "", "download directory (default media.dir from config)")
	cmd.Flags().BoolVar(&in.SkipTagging, "skip-tagging", false, "do not write exif metadata")
	cmd.Flags().BoolVar(&in.ForceDownload, "force", false, "download even when the file exists")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude written to media tags")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude written to media tags")
	return cmd
}
